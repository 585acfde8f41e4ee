// Package envelope implements the AS-DCP crypto frame envelope of
// spec.md §4.2: AES-128-CBC encryption with PKCS7 padding and an
// optional HMAC-SHA1 message integrity check wrapped around one
// plaintext essence frame. The entire envelope is built from the
// standard library (crypto/aes, crypto/cipher, crypto/hmac,
// crypto/sha1) since no example repo in the retrieval pack carries a
// higher-level AEAD or envelope-format dependency to ground a
// third-party substitute on; see DESIGN.md.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"

	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
)

// KeySize is the AES-128 key length in bytes.
const KeySize = 16

// IVSize is the AES block size used as the CBC initialization vector.
const IVSize = aes.BlockSize // 16

// MICSize is the HMAC-SHA1 message integrity check length.
const MICSize = 20

// fixedHeaderSize is the size of the envelope's plaintext header fields
// preceding the ciphertext: ContextID + PlaintextOffset + SourceKey +
// SourceLength + EssenceUL + IV.
const fixedHeaderSize = id.UUIDSize + 8 + id.ULSize + 8 + id.ULSize + IVSize

// Header holds the plaintext fields of a crypto frame envelope that
// precede the ciphertext, per spec.md §4.2.
type Header struct {
	ContextID       id.UUID
	PlaintextOffset uint64
	SourceKey       id.UL
	SourceLength    uint64
	EssenceUL       id.UL
	IV              [IVSize]byte
}

// Encryptor seals one plaintext essence frame into a crypto frame
// envelope value. A single Encryptor is reused across frames of one
// essence container; each call supplies a fresh IV.
type Encryptor struct {
	block   cipher.Block
	hmacKey []byte // nil disables MIC computation
}

// NewEncryptor constructs an Encryptor from a 128-bit key. If hmacKey is
// non-nil, every sealed envelope carries a trailing 20-byte MIC.
func NewEncryptor(key []byte, hmacKey []byte) (*Encryptor, error) {
	const op = "envelope.NewEncryptor"
	if len(key) != KeySize {
		return nil, errs.New(errs.KindCryptInit, op, "key must be 16 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.KindCryptInit, op, err)
	}

	return &Encryptor{block: block, hmacKey: hmacKey}, nil
}

// Seal encrypts plaintext under iv and returns the complete envelope
// value described in spec.md §4.2: header fields, an unencrypted
// PlaintextPad carved out of the first h.PlaintextOffset bytes (the
// JP2K/JXS codestream header region, per spec.md §4.4/§4.5), the
// PKCS7-padded ciphertext of the remainder, and (if the Encryptor was
// built with an HMAC key) a trailing 20-byte MIC.
func (e *Encryptor) Seal(h Header, iv [IVSize]byte, plaintext []byte) ([]byte, error) {
	const op = "envelope.Encryptor.Seal"
	if e == nil || e.block == nil {
		return nil, errs.New(errs.KindCryptInit, op, "encryptor not initialized")
	}

	offset := int(h.PlaintextOffset)
	if offset < 0 || offset > len(plaintext) {
		return nil, errs.New(errs.KindParam, op, "plaintext offset exceeds frame length")
	}

	h.IV = iv
	h.SourceLength = uint64(len(plaintext))

	pad := plaintext[:offset]
	toEncrypt := plaintext[offset:]

	padded := pkcs7Pad(toEncrypt, aes.BlockSize)

	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(e.block, iv[:])
	cbc.CryptBlocks(ciphertext, padded)

	headerBytes := encodeHeader(h)

	out := make([]byte, 0, len(headerBytes)+len(pad)+len(ciphertext)+MICSize)
	out = append(out, headerBytes...)
	out = append(out, pad...)
	out = append(out, ciphertext...)

	if e.hmacKey != nil {
		mic := computeMIC(e.hmacKey, headerBytes, ciphertext)
		out = append(out, mic...)
	}

	return out, nil
}

// Decryptor opens crypto frame envelopes sealed by a matching Encryptor.
type Decryptor struct {
	block   cipher.Block
	hmacKey []byte
}

// NewDecryptor constructs a Decryptor from a 128-bit key. If hmacKey is
// non-nil, Open verifies the trailing MIC and fails with KindHMACFail on
// mismatch.
func NewDecryptor(key []byte, hmacKey []byte) (*Decryptor, error) {
	const op = "envelope.NewDecryptor"
	if len(key) != KeySize {
		return nil, errs.New(errs.KindCryptInit, op, "key must be 16 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.KindCryptInit, op, err)
	}

	return &Decryptor{block: block, hmacKey: hmacKey}, nil
}

// Open verifies (if an HMAC key was configured) and decrypts value,
// returning the envelope header and the recovered plaintext frame.
func (d *Decryptor) Open(value []byte) (Header, []byte, error) {
	const op = "envelope.Decryptor.Open"
	if d == nil || d.block == nil {
		return Header{}, nil, errs.New(errs.KindCryptInit, op, "decryptor not initialized")
	}

	if len(value) < fixedHeaderSize {
		return Header{}, nil, errs.New(errs.KindSmallBuf, op, "envelope shorter than fixed header")
	}

	headerBytes := value[:fixedHeaderSize]
	rest := value[fixedHeaderSize:]

	h, err := decodeHeader(headerBytes)
	if err != nil {
		return Header{}, nil, errs.Wrap(errs.KindFormat, op, err)
	}

	micLen := 0
	if d.hmacKey != nil {
		if len(rest) < MICSize {
			return Header{}, nil, errs.New(errs.KindSmallBuf, op, "envelope missing MIC trailer")
		}
		micLen = MICSize
	}

	payload := rest[:len(rest)-micLen]

	offset := int(h.PlaintextOffset)
	if offset < 0 || offset > len(payload) {
		return Header{}, nil, errs.New(errs.KindFormat, op, "plaintext offset exceeds envelope payload")
	}
	pad := payload[:offset]
	ciphertext := payload[offset:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return Header{}, nil, errs.New(errs.KindFormat, op, "ciphertext is not a block multiple")
	}

	if d.hmacKey != nil {
		wantMIC := rest[len(rest)-MICSize:]
		gotMIC := computeMIC(d.hmacKey, headerBytes, ciphertext)
		if subtle.ConstantTimeCompare(wantMIC, gotMIC) != 1 {
			return Header{}, nil, errs.New(errs.KindHMACFail, op, "recomputed MIC does not match")
		}
	}

	padded := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(d.block, h.IV[:])
	cbc.CryptBlocks(padded, ciphertext)

	decrypted, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return Header{}, nil, errs.Wrap(errs.KindCryptFail, op, err)
	}

	plaintext := make([]byte, 0, len(pad)+len(decrypted))
	plaintext = append(plaintext, pad...)
	plaintext = append(plaintext, decrypted...)

	if uint64(len(plaintext)) != h.SourceLength {
		return Header{}, nil, errs.New(errs.KindCryptFail, op, "recovered length does not match SourceLength")
	}

	return h, plaintext, nil
}

func encodeHeader(h Header) []byte {
	engine := endian.GetBigEndianEngine()

	out := make([]byte, 0, fixedHeaderSize)
	out = append(out, h.ContextID.Bytes()...)
	out = engine.AppendUint64(out, h.PlaintextOffset)
	out = append(out, h.SourceKey.Bytes()...)
	out = engine.AppendUint64(out, h.SourceLength)
	out = append(out, h.EssenceUL.Bytes()...)
	out = append(out, h.IV[:]...)

	return out
}

func decodeHeader(data []byte) (Header, error) {
	const op = "envelope.decodeHeader"
	if len(data) != fixedHeaderSize {
		return Header{}, errs.New(errs.KindFormat, op, "short envelope header")
	}

	engine := endian.GetBigEndianEngine()

	var h Header
	off := 0

	contextID, err := id.ParseUUID(data[off : off+id.UUIDSize])
	if err != nil {
		return Header{}, errs.Wrap(errs.KindFormat, op, err)
	}
	h.ContextID = contextID
	off += id.UUIDSize

	h.PlaintextOffset = engine.Uint64(data[off:])
	off += 8

	sourceKey, err := id.ParseUL(data[off : off+id.ULSize])
	if err != nil {
		return Header{}, errs.Wrap(errs.KindFormat, op, err)
	}
	h.SourceKey = sourceKey
	off += id.ULSize

	h.SourceLength = engine.Uint64(data[off:])
	off += 8

	essenceUL, err := id.ParseUL(data[off : off+id.ULSize])
	if err != nil {
		return Header{}, errs.Wrap(errs.KindFormat, op, err)
	}
	h.EssenceUL = essenceUL
	off += id.ULSize

	copy(h.IV[:], data[off:off+IVSize])

	return h, nil
}

// micKeyNonce is the fixed 16-byte nonce h__HMACContext::SetKey in
// AS_DCP_AES.cpp concatenates onto the HMAC key before the SHA1 pass
// that derives the actual MIC key.
var micKeyNonce = [16]byte{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

// computeMIC derives an HMAC-SHA1 key as SHA1(key ∥ micKeyNonce), per
// spec.md §4.2's `HMAC-SHA1(K, key∥nonce)`-derived construction, and
// returns the MIC of header‖ciphertext under it.
func computeMIC(hmacKey, header, ciphertext []byte) []byte {
	keyed := make([]byte, 0, len(hmacKey)+len(micKeyNonce))
	keyed = append(keyed, hmacKey...)
	keyed = append(keyed, micKeyNonce[:]...)
	derived := sha1.Sum(keyed)

	mac := hmac.New(sha1.New, derived[:])
	mac.Write(header)
	mac.Write(ciphertext)

	return mac.Sum(nil)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}

	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errs.New(errs.KindFormat, "envelope.pkcs7Unpad", "padded data is not a block multiple")
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errs.New(errs.KindFormat, "envelope.pkcs7Unpad", "invalid PKCS7 padding length")
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errs.New(errs.KindFormat, "envelope.pkcs7Unpad", "inconsistent PKCS7 padding bytes")
		}
	}

	return data[:len(data)-padLen], nil
}
