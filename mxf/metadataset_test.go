package mxf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func setKeyN(n byte) id.UL {
	var u id.UL
	u[14] = 0x7F
	u[15] = n
	return u
}

func testPropertyUL(n byte) id.UL {
	var u id.UL
	u[14] = 0x6F
	u[15] = n
	return u
}

func TestSetPutGetRoundTrip(t *testing.T) {
	s := mxf.NewSet(setKeyN(1), id.UUID{1, 2, 3})
	s.Put(0x1001, testPropertyUL(1), []byte{0xAA, 0xBB})

	value, ok := s.Get(0x1001)
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB}, value)

	_, ok = s.Get(0x9999)
	assert.False(t, ok)
}

func TestSetBytesParseSetRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()
	instanceUID := id.UUID{9, 9, 9, 9}

	s := mxf.NewSet(setKeyN(2), instanceUID)
	s.Put(0x2001, testPropertyUL(2), []byte("hello"))

	encoded := s.Bytes(primer)

	key, _, value := splitTripleLong(t, encoded)
	assert.True(t, key.Equal(setKeyN(2)))

	parsed, err := mxf.ParseSet(setKeyN(2), value, primer)
	require.NoError(t, err)
	assert.Equal(t, instanceUID, parsed.InstanceUID)

	got, ok := parsed.Get(0x2001)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got)

	resolved, ok := primer.Resolve(0x2001)
	require.True(t, ok)
	assert.True(t, resolved.Equal(testPropertyUL(2)))
}

// TestSetBytesRegistersEveryTuple is the integration-level check the
// review called out as missing: a set with several non-InstanceUID
// tuples must populate the primer with one entry per tuple, not just
// InstanceUID.
func TestSetBytesRegistersEveryTuple(t *testing.T) {
	primer := mxf.NewPrimer()
	s := mxf.NewSet(setKeyN(4), id.UUID{4})
	s.Put(0x1001, testPropertyUL(1), []byte{0x01})
	s.Put(0x1002, testPropertyUL(2), []byte{0x02})
	s.Put(0x1003, testPropertyUL(3), []byte{0x03})

	_ = s.Bytes(primer)

	for i, tag := range []uint16{0x1001, 0x1002, 0x1003} {
		ul, ok := primer.Resolve(tag)
		require.True(t, ok, "tag %#x", tag)
		assert.True(t, ul.Equal(testPropertyUL(byte(i+1))))
	}
}

func TestParseSetFailsWithoutInstanceUID(t *testing.T) {
	primer := mxf.NewPrimer()

	// a metadata set value with a single unrelated tuple and no
	// InstanceUID tuple at all
	value := []byte{0x10, 0x01, 0x00, 0x02, 0xAA, 0xBB}

	_, err := mxf.ParseSet(setKeyN(3), value, primer)
	assert.Error(t, err)
}

// splitTripleLong decodes a KLV triple whose length may use either BER
// short or long form.
func splitTripleLong(t *testing.T, data []byte) (id.UL, int, []byte) {
	t.Helper()

	key, err := id.ParseUL(data[:id.ULSize])
	require.NoError(t, err)

	pos := id.ULSize
	first := data[pos]

	var length int
	var consumed int
	if first&0x80 == 0 {
		length = int(first)
		consumed = 1
	} else {
		k := int(first & 0x7F)
		require.Contains(t, []int{1, 2, 4, 8}, k)
		var n uint64
		for _, b := range data[pos+1 : pos+1+k] {
			n = n<<8 | uint64(b)
		}
		length = int(n)
		consumed = 1 + k
	}

	value := data[pos+consumed : pos+consumed+length]

	return key, id.ULSize + consumed, value
}
