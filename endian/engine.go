// Package endian provides the byte-order engine used to read and write
// every fixed-layout structure in the MXF file body: partition packs,
// the primer, metadata set local tuples, index table entries, and the
// crypto frame envelope.
//
// SMPTE 377 fixes the wire byte order to big-endian; unlike a
// general-purpose columnar format, this module never needs a
// little-endian wire variant, so the engine is a thin, fixed choice
// rather than a per-file option.
//
// # Thread Safety
//
// The returned EndianEngine is stateless and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface for convenient byte-order operations. This
// interface is satisfied by binary.BigEndian, the only byte order this
// module writes to disk.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the big-endian engine mandated by SMPTE 377
// for every KLV, partition pack, primer, and index table field.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
