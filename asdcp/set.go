package asdcp

import (
	"bytes"
	"io"

	"github.com/cinecert/asdcplib-sub002/klv"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// setValue re-encodes a decoded mxf.Set against primer and strips its
// own KLV key/length prefix, since descriptor.ParseXxx functions expect
// raw value bytes rather than an already-decoded Set. A facade resolves
// a set from essence.Reader.Descriptor/Set and hands this to the
// concrete descriptor parser matching its essence kind.
func setValue(s *mxf.Set, primer *mxf.Primer) []byte {
	full := s.Bytes(primer)
	rd := bytes.NewReader(full)

	h, err := klv.ReadHeader(rd)
	if err != nil {
		return nil
	}

	value, err := io.ReadAll(rd)
	if err != nil || len(value) != int(h.Length) {
		return nil
	}

	return value
}
