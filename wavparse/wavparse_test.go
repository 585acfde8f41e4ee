package wavparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/wavparse"
)

func buildWAV(channels, bitsPerSample uint16, sampleRate uint32, dataLen int) []byte {
	put16 := func(dst []byte, v uint16) []byte { return append(dst, byte(v), byte(v>>8)) }
	put32 := func(dst []byte, v uint32) []byte {
		return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}

	fmtBody := []byte{}
	fmtBody = put16(fmtBody, 1) // PCM
	fmtBody = put16(fmtBody, channels)
	fmtBody = put32(fmtBody, sampleRate)
	blockAlign := channels * (bitsPerSample / 8)
	byteRate := sampleRate * uint32(blockAlign)
	fmtBody = put32(fmtBody, byteRate)
	fmtBody = put16(fmtBody, blockAlign)
	fmtBody = put16(fmtBody, bitsPerSample)

	data := make([]byte, dataLen)
	for i := range data {
		data[i] = byte(i)
	}

	var b []byte
	b = append(b, []byte("RIFF")...)
	riffSizePos := len(b)
	b = put32(b, 0) // patched below
	b = append(b, []byte("WAVE")...)

	b = append(b, []byte("fmt ")...)
	b = put32(b, uint32(len(fmtBody)))
	b = append(b, fmtBody...)

	b = append(b, []byte("data")...)
	b = put32(b, uint32(len(data)))
	b = append(b, data...)

	total := uint32(len(b) - 8)
	b[riffSizePos] = byte(total)
	b[riffSizePos+1] = byte(total >> 8)
	b[riffSizePos+2] = byte(total >> 16)
	b[riffSizePos+3] = byte(total >> 24)

	return b
}

func TestParsePCM48kHzStereo16Bit(t *testing.T) {
	src := buildWAV(2, 16, 48000, 2*2*10)

	r, err := wavparse.NewReader(src, 1)
	require.NoError(t, err)

	f := r.Format()
	assert.Equal(t, wavparse.FormatPCM, f.FormatCode)
	assert.Equal(t, uint16(2), f.ChannelCount)
	assert.Equal(t, uint32(48000), f.SampleRate)
	assert.Equal(t, uint16(16), f.BitsPerSample)
	assert.Equal(t, 4, r.FrameSize()) // 2 channels * 2 bytes
	assert.Equal(t, 10, r.FrameCount())
}

func TestFramesIterationIsRestartable(t *testing.T) {
	src := buildWAV(1, 16, 44100, 2*5)
	r, err := wavparse.NewReader(src, 1)
	require.NoError(t, err)

	var first [][]byte
	for _, frame := range r.Frames() {
		first = append(first, frame)
	}
	assert.Len(t, first, 5)

	var second [][]byte
	for _, frame := range r.Frames() {
		second = append(second, frame)
	}
	assert.Equal(t, first, second)
}

func TestFramesIterationStopsEarly(t *testing.T) {
	src := buildWAV(1, 16, 44100, 2*5)
	r, err := wavparse.NewReader(src, 1)
	require.NoError(t, err)

	count := 0
	for idx, frame := range r.Frames() {
		_ = frame
		count++
		if idx == 1 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestRejectsMissingRIFFTag(t *testing.T) {
	_, err := wavparse.NewReader([]byte("not a wav file at all"), 1)
	require.Error(t, err)
}

func TestFrameSizeCoversSamplesPerEditUnit(t *testing.T) {
	src := buildWAV(2, 16, 48000, 2*2*24) // 24 stereo 16-bit samples
	r, err := wavparse.NewReader(src, 24)
	require.NoError(t, err)

	assert.Equal(t, 2*2*24, r.FrameSize())
	assert.Equal(t, 1, r.FrameCount())
}
