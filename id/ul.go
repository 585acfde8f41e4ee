package id

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cinecert/asdcplib-sub002/errs"
)

// ULSize is the fixed byte length of a SMPTE Universal Label.
const ULSize = 16

// UL is a 16-byte SMPTE Universal Label: a constant key identifying a
// metadata set type, essence container, codec, or operational pattern.
// ULs are immutable once constructed.
type UL [ULSize]byte

// ParseUL decodes a UL from exactly 16 bytes.
func ParseUL(data []byte) (UL, error) {
	var u UL
	if len(data) != ULSize {
		return u, errs.New(errs.KindFormat, "id.ParseUL", "UL must be exactly 16 bytes")
	}

	copy(u[:], data)

	return u, nil
}

// Bytes returns the 16-byte wire representation of u.
func (u UL) Bytes() []byte {
	b := make([]byte, ULSize)
	copy(b, u[:])

	return b
}

// IsZero reports whether every byte of u is zero.
func (u UL) IsZero() bool {
	return u == UL{}
}

// Equal reports byte-wise equality between two ULs.
func (u UL) Equal(other UL) bool {
	return u == other
}

// String renders the UL as big-endian dotted hex, e.g.
// "06.0e.2b.34.02.53.01.01.0d.01.03.01.02.10.01.00".
func (u UL) String() string {
	var sb strings.Builder
	for i, b := range u {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}

	return sb.String()
}

// MustParseHexUL parses a UL given as a contiguous 32-character hex
// string (no separators), panicking on malformed input. Intended for
// package-level UL constant tables, not for parsing untrusted input.
func MustParseHexUL(hexStr string) UL {
	raw, err := hex.DecodeString(hexStr)
	if err != nil || len(raw) != ULSize {
		panic("id: invalid UL hex constant: " + hexStr)
	}

	var u UL
	copy(u[:], raw)

	return u
}
