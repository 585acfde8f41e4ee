package timecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinecert/asdcplib-sub002/timecode"
)

func TestDropFrameOneHour(t *testing.T) {
	frames := timecode.TimecodeToFrames(30, 1, 0, 0, 0, true)
	assert.Equal(t, uint32(107892), frames)
}

func TestDropFrameUnsupportedRateReturnsZero(t *testing.T) {
	frames := timecode.TimecodeToFrames(24, 1, 0, 0, 0, true)
	assert.Equal(t, uint32(0), frames)
}

func TestNonDropFrame24fps(t *testing.T) {
	frames := timecode.TimecodeToFrames(24, 1, 0, 0, 0, false)
	assert.Equal(t, uint32(86400), frames) // 3600 seconds * 24fps
}

func TestFramesToTimecodeRoundTripNonDrop(t *testing.T) {
	frames := timecode.TimecodeToFrames(24, 1, 2, 3, 4, false)
	hh, mm, ss, ff := timecode.FramesToTimecode(24, frames)
	assert.Equal(t, uint16(1), hh)
	assert.Equal(t, uint16(2), mm)
	assert.Equal(t, uint16(3), ss)
	assert.Equal(t, uint16(4), ff)
}

func TestDropFrameMinuteTensBoundary(t *testing.T) {
	// mm=10 is a multiple of 10, so only the per-10-minute term applies:
	// 1*17982 + 0*1798 + 0*30 + 0 = 17982.
	dfFrames := timecode.TimecodeToFrames(30, 0, 10, 0, 0, true)
	assert.Equal(t, uint32(17982), dfFrames)
}
