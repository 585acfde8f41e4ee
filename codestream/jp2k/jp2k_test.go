package jp2k_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/codestream/jp2k"
)

func buildCodestream(componentCount uint16) []byte {
	var b []byte

	putU16 := func(v uint16) { b = append(b, byte(v>>8), byte(v)) }

	putU16(0xFF4F) // SOC

	putU16(0xFF51) // SIZ
	siz := []byte{0, 0} // Rsiz
	appendU32 := func(v uint32) {
		siz = append(siz, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	appendU32(1920) // Xsiz
	appendU32(1080) // Ysiz
	appendU32(0)    // XOsiz
	appendU32(0)    // YOsiz
	appendU32(1920) // XTsiz
	appendU32(1080) // YTsiz
	appendU32(0)    // XTOsiz
	appendU32(0)    // YTOsiz
	siz = append(siz, byte(componentCount>>8), byte(componentCount))
	for i := uint16(0); i < componentCount; i++ {
		siz = append(siz, 11, 1, 1) // Ssiz, XRsiz, YRsiz
	}
	putU16(uint16(len(siz) + 2))
	b = append(b, siz...)

	putU16(0xFF52) // COD
	cod := []byte{0, 0, 0, 1, 5, 2, 6, 6, 0, 1}
	putU16(uint16(len(cod) + 2))
	b = append(b, cod...)

	putU16(0xFF5C) // QCD
	qcd := []byte{0x20, 0x00, 0x00, 0x00}
	putU16(uint16(len(qcd) + 2))
	b = append(b, qcd...)

	putU16(0xFF93) // SOD

	b = append(b, []byte{0xDE, 0xAD, 0xBE, 0xEF}...)

	return b
}

func TestWalkMinimalCodestream(t *testing.T) {
	data := buildCodestream(3)

	md, err := jp2k.Walk(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(1920), md.Width)
	assert.Equal(t, uint32(1080), md.Height)
	assert.Equal(t, uint16(3), md.ComponentCount)
	assert.Equal(t, uint8(12), md.ComponentBitDepth)
	assert.Less(t, md.PlaintextOffset, len(data))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data[md.PlaintextOffset:])
}

func TestWalkRejectsMissingSOC(t *testing.T) {
	_, err := jp2k.Walk([]byte{0x00, 0x01, 0x00, 0x02})
	require.Error(t, err)
}

func TestWalkRejectsNonThreeComponents(t *testing.T) {
	data := buildCodestream(2)

	_, err := jp2k.Walk(data)
	require.Error(t, err)
}
