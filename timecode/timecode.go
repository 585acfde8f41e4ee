// Package timecode converts between hh:mm:ss:ff SMPTE timecode and
// absolute frame counts, including 30fps drop-frame code. The
// conversion arithmetic is ported directly from original_source's
// Timecode.cpp (tc_to_frames): drop-frame support is specific to 30fps
// and logs (rather than fails) when requested at an unsupported rate,
// matching that original behavior.
package timecode

import "github.com/cinecert/asdcplib-sub002/internal/logsink"

// Drop-frame frame counts per SMPTE 12M: the number of frames dropped
// every minute except every tenth minute keeps the 30fps code aligned
// to wall-clock time.
const (
	dfFramesPerHour  = 107892
	dfFramesPer10Min = 17982
	dfFramesPer1Min  = 1798
)

// FramesToTimecode is the inverse of TimecodeToFrames; it is not
// implemented for drop-frame code since the non-linear minute mapping
// requires the caller to iterate, matching the scope of the ported
// original (only tc_to_frames was carried over).
func FramesToTimecode(fps uint16, frames uint32) (hh, mm, ss, ff uint16) {
	totalSeconds := frames / uint32(fps)
	ff = uint16(frames % uint32(fps))
	ss = uint16(totalSeconds % 60)
	totalMinutes := totalSeconds / 60
	mm = uint16(totalMinutes % 60)
	hh = uint16(totalMinutes / 60)

	return hh, mm, ss, ff
}

// TimecodeToFrames converts hh:mm:ss:ff at fps to an absolute frame
// count. When df is true and fps is not 30, drop-frame code is
// unsupported at that rate: the failure is logged and 0 is returned,
// matching the ported original's behavior rather than returning an
// error, since frame-count callers historically treated 0 as a benign
// "beginning of reel" sentinel.
func TimecodeToFrames(fps uint16, hh, mm, ss, ff uint16, df bool) uint32 {
	if df {
		if fps != 30 {
			logsink.Default().Error("drop frame timecode is not supported at this frame rate", "fps", fps)
			return 0
		}

		return uint32(hh)*dfFramesPerHour +
			uint32(mm/10)*dfFramesPer10Min +
			uint32(mm%10)*dfFramesPer1Min +
			uint32(ss)*uint32(fps) +
			uint32(ff)
	}

	return ((uint32(hh)*60+uint32(mm))*60+uint32(ss))*uint32(fps) + uint32(ff)
}
