package klv_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/klv"
)

func TestBERRoundTripMinimalForm(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 256, 65535, 65536, 4294967295, 4294967296, math.MaxUint64}
	for _, n := range cases {
		encoded := klv.EncodeLength(n)
		decoded, consumed, err := klv.DecodeLength(encoded)
		require.NoError(t, err)
		assert.Equal(t, n, decoded)
		assert.Equal(t, len(encoded), consumed)
	}
}

func TestBEREncodeChoosesShortestForm(t *testing.T) {
	assert.Len(t, klv.EncodeLength(127), 1)
	assert.Len(t, klv.EncodeLength(128), 2)
	assert.Len(t, klv.EncodeLength(256), 3)
	assert.Len(t, klv.EncodeLength(70000), 5)
	assert.Len(t, klv.EncodeLength(1<<33), 9)
}

func TestBERDecodeRejectsReservedK0(t *testing.T) {
	_, _, err := klv.DecodeLength([]byte{0x80})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindMalformedBER))
}

// TestBERDecodeAcceptsNonMinimalK confirms spec.md §4.1's leniency: a
// long-form byte count that isn't 1, 2, 4, or 8 (here k=3) is still a
// conformant BER length field and must decode, not fail.
func TestBERDecodeAcceptsNonMinimalK(t *testing.T) {
	decoded, consumed, err := klv.DecodeLength([]byte{0x83, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x010203), decoded)
	assert.Equal(t, 4, consumed)
}

func TestBERDecodeRejectsKGreaterThanEight(t *testing.T) {
	data := append([]byte{0x89}, make([]byte, 9)...)
	_, _, err := klv.DecodeLength(data)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindMalformedBER))
}

func TestBERDecodeRejectsTruncated(t *testing.T) {
	_, _, err := klv.DecodeLength([]byte{0x82, 1})
	require.Error(t, err)
}

func TestEssenceLengthIsFixedNineBytes(t *testing.T) {
	for _, n := range []uint64{0, 1, 1000, 1 << 40} {
		b := klv.EncodeEssenceLength(n)
		require.Len(t, b, klv.EssenceLengthSize)
		decoded, consumed, err := klv.DecodeLength(b)
		require.NoError(t, err)
		assert.Equal(t, n, decoded)
		assert.Equal(t, klv.EssenceLengthSize, consumed)
	}
}

func TestWriteTripleThenReadHeader(t *testing.T) {
	key := id.MustParseHexUL("060e2b34020501010d01030102100100")
	value := []byte("hello essence")

	var buf bytes.Buffer
	_, err := klv.WriteTriple(&buf, key, value)
	require.NoError(t, err)

	h, err := klv.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, key, h.Key)
	assert.Equal(t, uint64(len(value)), h.Length)

	remaining := buf.Bytes()
	assert.Equal(t, value, remaining)
}

func TestWriteEssenceTripleUsesFixedLength(t *testing.T) {
	key := id.MustParseHexUL("060e2b34020501010d01030102100100")
	value := []byte("frame")

	var buf bytes.Buffer
	_, err := klv.WriteEssenceTriple(&buf, key, value)
	require.NoError(t, err)

	h, err := klv.ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, id.ULSize+klv.EssenceLengthSize, h.HeaderSize)
	assert.Equal(t, uint64(len(value)), h.Length)
}

func TestFillerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := klv.WriteFiller(&buf, 20)
	require.NoError(t, err)

	h, err := klv.ReadHeader(&buf)
	require.NoError(t, err)
	assert.True(t, klv.IsFiller(h.Key))
	assert.Equal(t, uint64(20), h.Length)
}
