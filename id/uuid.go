package id

import (
	"encoding/hex"
	"strings"

	"github.com/cinecert/asdcplib-sub002/errs"
)

// UUIDSize is the fixed byte length of an RFC 4122 UUID.
const UUIDSize = 16

// UUID is a 16-byte RFC 4122 version-4 identifier: random except for the
// version nibble (byte 6 high nibble fixed to 0x4) and the variant bits
// (byte 8 top two bits fixed to 0b10).
type UUID [UUIDSize]byte

// randSource supplies the random bytes NewUUID consumes. It is satisfied
// by *rng.RNG; kept as a narrow interface here so the id package does
// not need to import rng's concrete type, avoiding a dependency cycle
// with higher layers that construct the RNG.
type randSource interface {
	Read(p []byte) (n int, err error)
}

// NewUUID generates a new RFC 4122 v4 UUID, drawing 16 random bytes from
// src (the module's CSPRNG, not crypto/rand directly — see the rng
// package) and masking the version/variant nibbles.
func NewUUID(src randSource) (UUID, error) {
	var u UUID
	if _, err := src.Read(u[:]); err != nil {
		return u, errs.Wrap(errs.KindAlloc, "id.NewUUID", err)
	}

	u[6] = (u[6] & 0x0F) | 0x40 // version 4
	u[8] = (u[8] & 0x3F) | 0x80 // variant 10xx

	return u, nil
}

// ParseUUID decodes a UUID from exactly 16 bytes.
func ParseUUID(data []byte) (UUID, error) {
	var u UUID
	if len(data) != UUIDSize {
		return u, errs.New(errs.KindFormat, "id.ParseUUID", "UUID must be exactly 16 bytes")
	}

	copy(u[:], data)

	return u, nil
}

// Bytes returns the 16-byte wire representation of u.
func (u UUID) Bytes() []byte {
	b := make([]byte, UUIDSize)
	copy(b, u[:])

	return b
}

// IsZero reports whether every byte of u is zero.
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// IsValidV4 reports whether u carries the version-4/variant-1 nibbles
// NewUUID always sets; used to validate UUIDs decoded from a file.
func (u UUID) IsValidV4() bool {
	return u[6]&0xF0 == 0x40 && u[8]&0xC0 == 0x80
}

// String renders the UUID in canonical 8-4-4-4-12 hyphenated hex form.
func (u UUID) String() string {
	hexStr := hex.EncodeToString(u[:])

	var sb strings.Builder
	sb.Grow(36)
	sb.WriteString(hexStr[0:8])
	sb.WriteByte('-')
	sb.WriteString(hexStr[8:12])
	sb.WriteByte('-')
	sb.WriteString(hexStr[12:16])
	sb.WriteByte('-')
	sb.WriteString(hexStr[16:20])
	sb.WriteByte('-')
	sb.WriteString(hexStr[20:32])

	return sb.String()
}
