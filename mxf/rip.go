package mxf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/klv"
	"github.com/cinecert/asdcplib-sub002/membuf"
)

// RandomIndexPackKey is the SMPTE 377 Random Index Pack key.
var RandomIndexPackKey = id.MustParseHexUL("060e2b34020501010d01020101110100")

// RIPEntry is one (body SID, partition byte offset) pair in the
// Random Index Pack.
type RIPEntry struct {
	BodySID         uint32
	PartitionOffset uint64
}

// RIP is the trailing Random Index Pack: an ordered list of partition
// offsets closing the file, used by readers to seek directly to any
// partition without a linear scan, per spec.md §3.
type RIP struct {
	Entries []RIPEntry
}

// Append records one partition's body SID and byte offset.
func (r *RIP) Append(bodySID uint32, offset uint64) {
	r.Entries = append(r.Entries, RIPEntry{BodySID: bodySID, PartitionOffset: offset})
}

// Bytes serializes the RIP as a complete KLV triple, including the
// trailing 4-byte total-length field that lets a reader locate the RIP
// by seeking backward from the end of the file.
func (r *RIP) Bytes() []byte {
	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	defer w.Release()

	for _, e := range r.Entries {
		w.WriteU32(e.BodySID)
		w.WriteU64(e.PartitionOffset)
	}

	entryBytes := w.Len()
	lengthField := klv.EncodeLength(uint64(entryBytes + 4))
	total := uint32(id.ULSize + len(lengthField) + entryBytes + 4)
	w.WriteU32(total)

	value := append([]byte(nil), w.Bytes()...)

	out := make([]byte, 0, id.ULSize+len(lengthField)+len(value))
	out = append(out, RandomIndexPackKey.Bytes()...)
	out = append(out, lengthField...)
	out = append(out, value...)

	return out
}

// ParseRIP decodes a RIP from the tail of an MXF file. data must start
// at the RIP's key and extend to the end of the file.
func ParseRIP(data []byte) (*RIP, error) {
	const op = "mxf.ParseRIP"

	if len(data) < id.ULSize+1 {
		return nil, errs.New(errs.KindSmallBuf, op, "buffer too short for RIP")
	}

	key, err := id.ParseUL(data[:id.ULSize])
	if err != nil || !key.Equal(RandomIndexPackKey) {
		return nil, errs.New(errs.KindFormat, op, "RIP key mismatch")
	}

	pos := id.ULSize
	length, consumed, err := klv.DecodeLength(data[pos:])
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedBER, op, err)
	}
	pos += consumed

	if uint64(pos)+length > uint64(len(data)) {
		return nil, errs.New(errs.KindSmallBuf, op, "RIP value exceeds buffer")
	}

	value := data[pos : uint64(pos)+length]
	entryBytes := len(value) - 4
	if entryBytes < 0 || entryBytes%12 != 0 {
		return nil, errs.New(errs.KindFormat, op, "RIP value length is not a whole number of entries")
	}

	engine := endian.GetBigEndianEngine()
	r := membuf.NewReader(value[:entryBytes], engine)

	rip := &RIP{}
	for r.Len() > 0 {
		bodySID, err := r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		offset, err := r.ReadU64()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		rip.Append(bodySID, offset)
	}

	return rip, nil
}
