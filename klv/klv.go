package klv

import (
	"io"

	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
)

// Header describes a KLV triple whose value bytes have not yet been
// read: the 16-byte key, the decoded length, and the total number of
// header bytes consumed (16 + BER length field) so a caller can compute
// where the value region starts and ends without touching it. This is
// what enables streaming: a reader can inspect Key and Length, then
// decide to Seek past Length bytes instead of reading them.
type Header struct {
	Key        id.UL
	Length     uint64
	HeaderSize int
}

// ReadHeader reads a 16-byte key and a BER length field from r and
// returns a Header describing the value region that follows, without
// reading any of the value bytes.
func ReadHeader(r io.Reader) (Header, error) {
	const op = "klv.ReadHeader"

	var keyBuf [id.ULSize]byte
	if _, err := io.ReadFull(r, keyBuf[:]); err != nil {
		return Header{}, errs.Wrap(errs.KindReadFail, op, err)
	}

	key, err := id.ParseUL(keyBuf[:])
	if err != nil {
		return Header{}, errs.Wrap(errs.KindFormat, op, err)
	}

	// Read the length sentinel, then however many more bytes it
	// declares, one byte at a time — length-of-length is not known until
	// the sentinel byte is read.
	var sentinel [1]byte
	if _, err := io.ReadFull(r, sentinel[:]); err != nil {
		return Header{}, errs.Wrap(errs.KindReadFail, op, err)
	}

	if sentinel[0]&0x80 == 0 {
		return Header{Key: key, Length: uint64(sentinel[0]), HeaderSize: id.ULSize + 1}, nil
	}

	k := int(sentinel[0] & 0x7F)
	switch k {
	case 1, 2, 4, 8:
	default:
		return Header{}, errs.New(errs.KindMalformedBER, op, "unsupported long-form length byte count")
	}

	lenBytes := make([]byte, k)
	if _, err := io.ReadFull(r, lenBytes); err != nil {
		return Header{}, errs.Wrap(errs.KindReadFail, op, err)
	}

	var n uint64
	for _, b := range lenBytes {
		n = n<<8 | uint64(b)
	}

	return Header{Key: key, Length: n, HeaderSize: id.ULSize + 1 + k}, nil
}

// WriteTriple writes a complete KLV triple (key, shortest-fitting BER
// length, value) to w.
func WriteTriple(w io.Writer, key id.UL, value []byte) (int, error) {
	const op = "klv.WriteTriple"

	lenBytes := EncodeLength(uint64(len(value)))
	total := 0

	n, err := w.Write(key.Bytes())
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	n, err = w.Write(lenBytes)
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	n, err = w.Write(value)
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	return total, nil
}

// WriteEssenceTriple writes a complete essence-frame KLV triple using
// the fixed 9-byte long-form length required by §4.1, so the length
// field can later be patched in place (e.g. after in-place encryption
// changes the value size) without shifting the value bytes.
func WriteEssenceTriple(w io.Writer, key id.UL, value []byte) (int, error) {
	const op = "klv.WriteEssenceTriple"

	lenBytes := EncodeEssenceLength(uint64(len(value)))
	total := 0

	n, err := w.Write(key.Bytes())
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	n, err = w.Write(lenBytes)
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	n, err = w.Write(value)
	total += n
	if err != nil {
		return total, errs.Wrap(errs.KindWriteFail, op, err)
	}

	return total, nil
}

// PatchEssenceLength seeks to a previously written essence KLV's length
// field (at headerOffset, the byte offset of the key) and rewrites the
// 9-byte long-form length in place to reflect newSize, without touching
// any other byte.
func PatchEssenceLength(w io.WriteSeeker, headerOffset int64, newSize uint64) error {
	const op = "klv.PatchEssenceLength"

	if _, err := w.Seek(headerOffset+int64(id.ULSize), io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	if _, err := w.Write(EncodeEssenceLength(newSize)); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	return nil
}
