// Package klv implements the SMPTE 336 Key-Length-Value encoding
// primitive used for every object in the MXF byte stream: the partition
// pack, the primer, metadata sets, index table segments, essence
// triples, and filler.
package klv

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
)

// EssenceLengthSize is the fixed number of length-field bytes used for
// every essence-frame KLV: a 0x88 sentinel followed by 8 big-endian
// length bytes. Essence frames always use this fixed long form (instead
// of the shortest form that fits) so a partially written frame can be
// patched by seeking back to the length field and rewriting it without
// shifting any subsequent bytes.
const EssenceLengthSize = 9

// EncodeLength encodes n as a BER length field, choosing the shortest
// form that fits: the single-byte short form for n < 128, or the long
// form (a 0x80|k sentinel followed by k big-endian bytes, k in
// {1,2,4,8}) otherwise.
func EncodeLength(n uint64) []byte {
	if n < 128 {
		return []byte{byte(n)}
	}

	k := minLongFormBytes(n)
	out := make([]byte, 1+k)
	out[0] = 0x80 | byte(k)

	engine := endian.GetBigEndianEngine()
	var tmp [8]byte
	engine.PutUint64(tmp[:], n)
	copy(out[1:], tmp[8-k:])

	return out
}

// EncodeEssenceLength encodes n using the fixed 9-byte long form
// required for essence-frame KLVs (§4.1), regardless of how small n is.
func EncodeEssenceLength(n uint64) []byte {
	out := make([]byte, EssenceLengthSize)
	out[0] = 0x80 | 8

	engine := endian.GetBigEndianEngine()
	engine.PutUint64(out[1:], n)

	return out
}

func minLongFormBytes(n uint64) int {
	switch {
	case n <= 0xFF:
		return 1
	case n <= 0xFFFF:
		return 2
	case n <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// DecodeLength reads a BER length field from the front of data, returning
// the decoded value and the number of bytes consumed (including the
// sentinel byte). Per spec.md §4.1 it fails with KindMalformedBER on
// exactly three conditions: a reserved k=0 sentinel, a k greater than 8
// (more bytes than fit in a uint64 length), or truncated input. Any k in
// {1..8} is accepted, including byte counts nobody encodes (3, 5, 6, 7) —
// BER permits them and a reader must not reject a conformant producer's
// non-minimal length field.
func DecodeLength(data []byte) (uint64, int, error) {
	const op = "klv.DecodeLength"
	if len(data) < 1 {
		return 0, 0, errs.New(errs.KindMalformedBER, op, "empty input")
	}

	first := data[0]
	if first&0x80 == 0 {
		return uint64(first), 1, nil
	}

	k := int(first & 0x7F)
	if k == 0 {
		return 0, 0, errs.New(errs.KindMalformedBER, op, "reserved long-form length k=0")
	}
	if k > 8 {
		return 0, 0, errs.New(errs.KindMalformedBER, op, "long-form length byte count exceeds 8")
	}

	if len(data) < 1+k {
		return 0, 0, errs.New(errs.KindMalformedBER, op, "truncated long-form length")
	}

	var n uint64
	for _, b := range data[1 : 1+k] {
		n = n<<8 | uint64(b)
	}

	return n, 1 + k, nil
}
