// Package membuf implements the bounds-checked memory cursor used to walk
// the fixed-layout structures of an MXF file: partition packs, primer
// entries, metadata set fields, and index table segments. Every read
// advances an internal offset and fails closed with errs.KindSmallBuf
// rather than panicking on a short buffer.
package membuf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/klv"
)

// Reader is a bounds-checked cursor over an in-memory byte slice, reading
// fixed-width integers and identifiers in the engine's byte order.
type Reader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
}

// NewReader wraps data for sequential reads using engine's byte order.
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.data) - r.off }

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) require(op string, n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return errs.New(errs.KindSmallBuf, op, "buffer too small for requested read")
	}

	return nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	const op = "membuf.ReadU8"
	if err := r.require(op, 1); err != nil {
		return 0, err
	}

	b := r.data[r.off]
	r.off++

	return b, nil
}

// ReadU16 reads a big/little-endian (per engine) uint16.
func (r *Reader) ReadU16() (uint16, error) {
	const op = "membuf.ReadU16"
	if err := r.require(op, 2); err != nil {
		return 0, err
	}

	v := r.engine.Uint16(r.data[r.off:])
	r.off += 2

	return v, nil
}

// ReadU32 reads a uint32.
func (r *Reader) ReadU32() (uint32, error) {
	const op = "membuf.ReadU32"
	if err := r.require(op, 4); err != nil {
		return 0, err
	}

	v := r.engine.Uint32(r.data[r.off:])
	r.off += 4

	return v, nil
}

// ReadU64 reads a uint64.
func (r *Reader) ReadU64() (uint64, error) {
	const op = "membuf.ReadU64"
	if err := r.require(op, 8); err != nil {
		return 0, err
	}

	v := r.engine.Uint64(r.data[r.off:])
	r.off += 8

	return v, nil
}

// ReadRaw returns the next n bytes without copying; callers must not
// retain the slice past the lifetime of the reader's backing array if
// the caller later mutates it.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	const op = "membuf.ReadRaw"
	if err := r.require(op, n); err != nil {
		return nil, err
	}

	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

// ReadUL reads a 16-byte Universal Label.
func (r *Reader) ReadUL() (id.UL, error) {
	const op = "membuf.ReadUL"
	if err := r.require(op, id.ULSize); err != nil {
		return id.UL{}, err
	}

	u, err := id.ParseUL(r.data[r.off : r.off+id.ULSize])
	if err != nil {
		return id.UL{}, errs.Wrap(errs.KindFormat, op, err)
	}

	r.off += id.ULSize

	return u, nil
}

// ReadUUID reads a 16-byte UUID.
func (r *Reader) ReadUUID() (id.UUID, error) {
	const op = "membuf.ReadUUID"
	if err := r.require(op, id.UUIDSize); err != nil {
		return id.UUID{}, err
	}

	u, err := id.ParseUUID(r.data[r.off : r.off+id.UUIDSize])
	if err != nil {
		return id.UUID{}, errs.Wrap(errs.KindFormat, op, err)
	}

	r.off += id.UUIDSize

	return u, nil
}

// ReadUMID reads a 32-byte Unique Material Identifier.
func (r *Reader) ReadUMID() (id.UMID, error) {
	const op = "membuf.ReadUMID"
	if err := r.require(op, id.UMIDSize); err != nil {
		return id.UMID{}, err
	}

	u, err := id.ParseUMID(r.data[r.off : r.off+id.UMIDSize])
	if err != nil {
		return id.UMID{}, errs.Wrap(errs.KindFormat, op, err)
	}

	r.off += id.UMIDSize

	return u, nil
}

// ReadBER reads a BER length field and returns the decoded value.
func (r *Reader) ReadBER() (uint64, error) {
	const op = "membuf.ReadBER"
	if r.off >= len(r.data) {
		return 0, errs.New(errs.KindSmallBuf, op, "no bytes remaining for BER length")
	}

	n, consumed, err := klv.DecodeLength(r.data[r.off:])
	if err != nil {
		return 0, err
	}

	r.off += consumed

	return n, nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	const op = "membuf.Skip"
	if err := r.require(op, n); err != nil {
		return err
	}

	r.off += n

	return nil
}
