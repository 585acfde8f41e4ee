package compress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/compress"
)

func TestCreateCodecAllTypes(t *testing.T) {
	cases := []compress.CompressionType{
		compress.CompressionNone,
		compress.CompressionZstd,
		compress.CompressionS2,
		compress.CompressionLZ4,
	}

	for _, ct := range cases {
		codec, err := compress.CreateCodec(ct, "resource")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}
}

func TestCreateCodecRejectsUnknownType(t *testing.T) {
	_, err := compress.CreateCodec(compress.CompressionType(0xFF), "resource")
	require.Error(t, err)
}

func TestGetCodecReturnsBuiltin(t *testing.T) {
	codec, err := compress.GetCodec(compress.CompressionZstd)
	require.NoError(t, err)
	require.NotNil(t, codec)
}

func TestGetCodecRejectsUnknownType(t *testing.T) {
	_, err := compress.GetCodec(compress.CompressionType(0xFF))
	require.Error(t, err)
}

func TestCompressionStatsRatioAndSavings(t *testing.T) {
	stats := compress.CompressionStats{
		Algorithm:      compress.CompressionZstd,
		OriginalSize:   1000,
		CompressedSize: 250,
	}

	assert.InDelta(t, 0.25, stats.CompressionRatio(), 0.0001)
	assert.InDelta(t, 75.0, stats.SpaceSavings(), 0.0001)
}

func TestCompressionStatsZeroOriginalSize(t *testing.T) {
	stats := compress.CompressionStats{}
	assert.Equal(t, 0.0, stats.CompressionRatio())
}

func TestCompressionTypeString(t *testing.T) {
	assert.Equal(t, "None", compress.CompressionNone.String())
	assert.Equal(t, "Zstd", compress.CompressionZstd.String())
	assert.Equal(t, "S2", compress.CompressionS2.String())
	assert.Equal(t, "LZ4", compress.CompressionLZ4.String())
	assert.Equal(t, "Unknown", compress.CompressionType(0xFF).String())
}

func TestCodecRoundTripAllAlgorithms(t *testing.T) {
	payload := []byte(`<smpte:TimedText xmlns:smpte="http://www.smpte-ra.org/schemas/428-7/2014/TT"></smpte:TimedText>`)

	for _, ct := range []compress.CompressionType{
		compress.CompressionNone,
		compress.CompressionZstd,
		compress.CompressionS2,
		compress.CompressionLZ4,
	} {
		codec, err := compress.CreateCodec(ct, "timedtext")
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)

		out, err := codec.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	}
}
