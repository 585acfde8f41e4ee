package mxf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func ulN(n byte) id.UL {
	var u id.UL
	u[15] = n
	return u
}

func TestAllocateTagStartsAt0x8000InRequestOrder(t *testing.T) {
	p := mxf.NewPrimer()

	tag1 := p.AllocateTag(ulN(1))
	tag2 := p.AllocateTag(ulN(2))
	tag3 := p.AllocateTag(ulN(3))

	assert.Equal(t, uint16(0x8000), tag1)
	assert.Equal(t, uint16(0x8001), tag2)
	assert.Equal(t, uint16(0x8002), tag3)
}

func TestAllocateTagIsIdempotentPerUL(t *testing.T) {
	p := mxf.NewPrimer()

	tag1 := p.AllocateTag(ulN(1))
	tag1Again := p.AllocateTag(ulN(1))

	assert.Equal(t, tag1, tag1Again)
}

func TestPrimerBytesParsePrimerRoundTrip(t *testing.T) {
	p := mxf.NewPrimer()
	p.AllocateTag(ulN(1))
	p.AllocateTag(ulN(2))

	encoded := p.Bytes()

	header, consumed, value := splitTriple(t, encoded)
	assert.True(t, header.Equal(mxf.PrimerPackKey))

	parsed, err := mxf.ParsePrimer(value)
	require.NoError(t, err)

	ul, ok := parsed.Resolve(0x8000)
	require.True(t, ok)
	assert.True(t, ul.Equal(ulN(1)))

	ul, ok = parsed.Resolve(0x8001)
	require.True(t, ok)
	assert.True(t, ul.Equal(ulN(2)))

	assert.Equal(t, len(encoded), consumed+len(value))
}

func TestParsePrimerAdvancesNextFreePastExplicitTags(t *testing.T) {
	p := mxf.NewPrimer()
	p.Register(0x8005, ulN(9))

	_, _, value := splitTriple(t, p.Bytes())

	parsed, err := mxf.ParsePrimer(value)
	require.NoError(t, err)

	nextTag := parsed.AllocateTag(ulN(99))
	assert.Equal(t, uint16(0x8006), nextTag)
}

// splitTriple decodes a KLV triple's key and BER length, returning the
// key, the number of key+length bytes consumed, and the value slice.
func splitTriple(t *testing.T, data []byte) (id.UL, int, []byte) {
	t.Helper()

	key, err := id.ParseUL(data[:id.ULSize])
	require.NoError(t, err)

	length := data[id.ULSize]
	require.Less(t, length, byte(0x80))

	value := data[id.ULSize+1 : id.ULSize+1+int(length)]

	return key, id.ULSize + 1, value
}
