package id

import (
	"encoding/hex"

	"github.com/cinecert/asdcplib-sub002/errs"
)

// UMIDSize is the fixed byte length of a SMPTE UMID.
const UMIDSize = 32

// umidPrefix is the 12-byte SMPTE-330 Basic UMID universal-label prefix
// shared by every UMID this engine produces: UL designator, length,
// instance/material-type and material-generation octets fixed to the
// "UUID/UL material number, single item" profile.
var umidPrefix = [12]byte{
	0x06, 0x0A, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x05,
	0x01, 0x01, 0x0F, 0x20,
}

// UMID is a 32-byte SMPTE Unique Material Identifier: a 12-byte
// universal-label prefix, a 4-byte length field, and a 16-byte material
// number.
type UMID [UMIDSize]byte

// NewUMID builds a UMID from a 16-byte material number (typically a
// freshly generated UUID, see rng.RNG + NewUUID).
func NewUMID(materialNumber [16]byte) UMID {
	var u UMID
	copy(u[0:12], umidPrefix[:])
	// length field: 0x13 length code, 0x00 instance number placeholder,
	// 0x00 0x00 reserved — encodes "32 bytes total, material-number only".
	u[12] = 0x13
	u[13] = 0x00
	u[14] = 0x00
	u[15] = 0x00
	copy(u[16:32], materialNumber[:])

	return u
}

// ParseUMID decodes a UMID from exactly 32 bytes.
func ParseUMID(data []byte) (UMID, error) {
	var u UMID
	if len(data) != UMIDSize {
		return u, errs.New(errs.KindFormat, "id.ParseUMID", "UMID must be exactly 32 bytes")
	}

	copy(u[:], data)

	return u, nil
}

// Bytes returns the 32-byte wire representation of u.
func (u UMID) Bytes() []byte {
	b := make([]byte, UMIDSize)
	copy(b, u[:])

	return b
}

// MaterialNumber returns the trailing 16-byte material number.
func (u UMID) MaterialNumber() [16]byte {
	var m [16]byte
	copy(m[:], u[16:32])

	return m
}

func (u UMID) String() string {
	return hex.EncodeToString(u[:])
}
