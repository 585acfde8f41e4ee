package envelope_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
)

func zeroKey() []byte { return make([]byte, envelope.KeySize) }

func testHeader() envelope.Header {
	return envelope.Header{
		ContextID: id.UUID{},
		SourceKey: id.MustParseHexUL("060e2b34020501010d01030102100100"),
		EssenceUL: id.MustParseHexUL("060e2b34010201010d01030102100100"),
	}
}

// TestEnvelopeSizeNoHMAC matches the scenario in spec.md §8: a 16-byte
// zero key and a 100-byte plaintext frame of 0x41 produce a 192-byte
// envelope when no HMAC is configured.
func TestEnvelopeSizeNoHMAC(t *testing.T) {
	enc, err := envelope.NewEncryptor(zeroKey(), nil)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x41}, 100)
	var iv [envelope.IVSize]byte

	sealed, err := enc.Seal(testHeader(), iv, plaintext)
	require.NoError(t, err)
	assert.Len(t, sealed, 192)
}

// TestEnvelopeSizeWithHMAC is the same scenario with an HMAC context,
// which appends a 20-byte MIC for a 212-byte total.
func TestEnvelopeSizeWithHMAC(t *testing.T) {
	hmacKey := zeroKey()
	enc, err := envelope.NewEncryptor(zeroKey(), hmacKey)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x41}, 100)
	var iv [envelope.IVSize]byte

	sealed, err := enc.Seal(testHeader(), iv, plaintext)
	require.NoError(t, err)
	assert.Len(t, sealed, 212)
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, envelope.KeySize)
	hmacKey := bytes.Repeat([]byte{0x09}, envelope.KeySize)

	enc, err := envelope.NewEncryptor(key, hmacKey)
	require.NoError(t, err)
	dec, err := envelope.NewDecryptor(key, hmacKey)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	var iv [envelope.IVSize]byte
	iv[0] = 0x42

	sealed, err := enc.Seal(testHeader(), iv, plaintext)
	require.NoError(t, err)

	h, recovered, err := dec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, recovered)
	assert.Equal(t, uint64(len(plaintext)), h.SourceLength)
	assert.Equal(t, iv, h.IV)
}

func TestOpenFailsOnTamperedMIC(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, envelope.KeySize)
	hmacKey := bytes.Repeat([]byte{0x09}, envelope.KeySize)

	enc, err := envelope.NewEncryptor(key, hmacKey)
	require.NoError(t, err)
	dec, err := envelope.NewDecryptor(key, hmacKey)
	require.NoError(t, err)

	var iv [envelope.IVSize]byte
	sealed, err := enc.Seal(testHeader(), iv, []byte("payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF

	_, _, err = dec.Open(sealed)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindHMACFail))
}

// TestSealOpenRoundTripWithPlaintextPad verifies spec.md §4.2's
// PlaintextPad carve-out: the first PlaintextOffset bytes (modeling a
// JP2K/JXS codestream header) travel unencrypted, and Open recovers the
// original frame byte-for-byte.
func TestSealOpenRoundTripWithPlaintextPad(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, envelope.KeySize)
	hmacKey := bytes.Repeat([]byte{0x09}, envelope.KeySize)

	enc, err := envelope.NewEncryptor(key, hmacKey)
	require.NoError(t, err)
	dec, err := envelope.NewDecryptor(key, hmacKey)
	require.NoError(t, err)

	header := []byte("jp2k-header-bytes-in-the-clear-")
	body := []byte("the-rest-of-the-codestream-is-encrypted-picture-data")
	plaintext := append(append([]byte(nil), header...), body...)

	h := testHeader()
	h.PlaintextOffset = uint64(len(header))

	var iv [envelope.IVSize]byte
	iv[0] = 0x11

	sealed, err := enc.Seal(h, iv, plaintext)
	require.NoError(t, err)

	// the PlaintextPad region is never AES-CBC encrypted: it appears
	// verbatim in the sealed envelope right after the fixed header.
	assert.True(t, bytes.Contains(sealed, header))

	gotHeader, recovered, err := dec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, recovered)
	assert.Equal(t, h.PlaintextOffset, gotHeader.PlaintextOffset)
}

func TestNewEncryptorRejectsBadKeySize(t *testing.T) {
	_, err := envelope.NewEncryptor(make([]byte, 10), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindCryptInit))
}

func TestOpenFailsOnShortBuffer(t *testing.T) {
	dec, err := envelope.NewDecryptor(zeroKey(), nil)
	require.NoError(t, err)

	_, _, err = dec.Open(make([]byte, 10))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSmallBuf))
}
