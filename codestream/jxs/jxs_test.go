package jxs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/codestream/jxs"
)

func buildCodestream(ng, ss, nly uint8) []byte {
	var b []byte
	putU16 := func(v uint16) { b = append(b, byte(v>>8), byte(v)) }

	putU16(0xFF10) // SOC

	putU16(0xFF12) // PIH
	pih := []byte{0, 0, 0, 0} // Lcod (ignored)
	pih = append(pih, 0, 0, 1, 0) // profile/level
	pih = append(pih, 0x07, 0x80) // width 1920
	pih = append(pih, 0x04, 0x38) // height 1080
	pih = append(pih, 0x00, 0x08) // slice height 8
	pih = append(pih, 0, 0)       // reserved
	pih = append(pih, 3)          // component count
	pih = append(pih, ng, ss, nly)
	putU16(uint16(len(pih) + 2))
	b = append(b, pih...)

	putU16(0xFF13) // CDT
	cdt := []byte{}
	for i := 0; i < 3; i++ {
		cdt = append(cdt, 10, 1, 1)
	}
	putU16(uint16(len(cdt) + 2))
	b = append(b, cdt...)

	putU16(0xFF20) // SLH
	b = append(b, 0xAA, 0xBB)

	return b
}

func TestWalkMinimalCodestream(t *testing.T) {
	data := buildCodestream(4, 8, 1)

	md, err := jxs.Walk(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(1920), md.Width)
	assert.Equal(t, uint16(1080), md.Height)
	assert.Equal(t, uint16(8), md.SliceHeight)
	assert.Equal(t, uint8(3), md.ComponentCount)
	assert.Equal(t, []uint8{10, 10, 10}, md.BitDepth)
	assert.Equal(t, data[md.PlaintextOffset:], []byte{0xAA, 0xBB})
}

func TestWalkRejectsBadNg(t *testing.T) {
	_, err := jxs.Walk(buildCodestream(5, 8, 1))
	require.Error(t, err)
}

func TestWalkRejectsTooManyLayers(t *testing.T) {
	_, err := jxs.Walk(buildCodestream(4, 8, 2))
	require.Error(t, err)
}

func TestWalkRejectsCDTBeforePIH(t *testing.T) {
	data := []byte{0xFF, 0x10, 0xFF, 0x13, 0x00, 0x02}
	_, err := jxs.Walk(data)
	require.Error(t, err)
}
