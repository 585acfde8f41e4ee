// Package wavparse implements the canonical RIFF/WAVE header parser of
// spec.md §4.6 and a lazy, restartable sequence of frame-sized buffers
// over the data chunk. The iterator idiom (a zero-argument factory
// returning an iter.Seq closed over parsed state, restartable via
// Reset) is grounded on blob.NumericBlob's All/AllTimestamps family in
// the teacher repo.
package wavparse

import (
	"iter"

	"github.com/cinecert/asdcplib-sub002/errs"
)

// FormatCode identifies the WAVE fmt chunk's wFormatTag.
type FormatCode uint16

const (
	FormatPCM       FormatCode = 1
	FormatIEEEFloat FormatCode = 3
)

// Format holds the decoded fmt chunk fields.
type Format struct {
	FormatCode    FormatCode
	ChannelCount  uint16
	SampleRate    uint32
	BytesPerSec   uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Reader parses a canonical RIFF/WAVE byte slice and exposes a
// restartable, finite sequence of frame-sized buffers over the data
// chunk.
type Reader struct {
	format        Format
	data          []byte
	samplesPerEdit int
	frameSize      int
}

// NewReader parses the RIFF/WAVE header in src and returns a Reader
// ready to iterate frames of samplesPerEditUnit samples each. It
// rejects input without the "RIFF"+size+"WAVE" tags, a "fmt " chunk
// and a "data" chunk (found in either order; other chunks are
// skipped), and any fmt chunk whose format code is not PCM or
// IEEE-float, with KindRawFormat.
func NewReader(src []byte, samplesPerEditUnit int) (*Reader, error) {
	const op = "wavparse.NewReader"

	if len(src) < 12 {
		return nil, errs.New(errs.KindRawFormat, op, "buffer too short for RIFF header")
	}
	if string(src[0:4]) != "RIFF" || string(src[8:12]) != "WAVE" {
		return nil, errs.New(errs.KindRawFormat, op, "missing RIFF/WAVE container tags")
	}

	pos := 12
	var format Format
	var sawFormat bool
	var dataChunk []byte

	for pos+8 <= len(src) {
		chunkID := string(src[pos : pos+4])
		chunkSize := le32(src[pos+4 : pos+8])
		bodyStart := pos + 8
		bodyEnd := bodyStart + int(chunkSize)
		if bodyEnd > len(src) {
			return nil, errs.New(errs.KindRawFormat, op, "chunk runs past end of buffer")
		}

		switch chunkID {
		case "fmt ":
			f, err := parseFormat(src[bodyStart:bodyEnd])
			if err != nil {
				return nil, err
			}
			format = f
			sawFormat = true

		case "data":
			dataChunk = src[bodyStart:bodyEnd]
		}

		pos = bodyEnd
		if chunkSize%2 == 1 && pos < len(src) {
			pos++ // chunks are word-aligned
		}

		if sawFormat && dataChunk != nil {
			break
		}
	}

	if !sawFormat {
		return nil, errs.New(errs.KindRawFormat, op, "missing fmt chunk")
	}
	if dataChunk == nil {
		return nil, errs.New(errs.KindRawFormat, op, "missing data chunk")
	}

	if format.FormatCode != FormatPCM && format.FormatCode != FormatIEEEFloat {
		return nil, errs.New(errs.KindRawFormat, op, "unsupported WAVE format code, must be PCM or IEEE-float")
	}

	bytesPerSample := int(format.BitsPerSample) / 8
	frameSize := int(format.ChannelCount) * bytesPerSample * samplesPerEditUnit
	if frameSize <= 0 {
		return nil, errs.New(errs.KindRawFormat, op, "computed frame size is non-positive")
	}

	return &Reader{
		format:         format,
		data:           dataChunk,
		samplesPerEdit: samplesPerEditUnit,
		frameSize:      frameSize,
	}, nil
}

// Format returns the decoded fmt chunk.
func (r *Reader) Format() Format { return r.format }

// SamplesPerEditUnit returns the edit-unit sample count frames are sized to.
func (r *Reader) SamplesPerEditUnit() int { return r.samplesPerEdit }

// FrameSize returns the byte size of one frame.
func (r *Reader) FrameSize() int { return r.frameSize }

// FrameCount returns the number of complete frames available.
func (r *Reader) FrameCount() int {
	if r.frameSize == 0 {
		return 0
	}

	return len(r.data) / r.frameSize
}

// Frames returns a finite, restartable sequence of frame-sized byte
// slices over the data chunk. Calling Frames again after a previous
// iteration was abandoned early starts again from the first frame —
// restart is implicit because each call recomputes the sequence from
// r.data rather than advancing shared cursor state.
func (r *Reader) Frames() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		count := r.FrameCount()
		for i := 0; i < count; i++ {
			start := i * r.frameSize
			frame := r.data[start : start+r.frameSize]
			if !yield(i, frame) {
				return
			}
		}
	}
}

// Reset is a no-op kept for API symmetry with the teacher's restartable
// iterator vocabulary: Frames never retains cross-call cursor state, so
// there is nothing to reset.
func (r *Reader) Reset() {}

func parseFormat(p []byte) (Format, error) {
	const op = "wavparse.parseFormat"
	if len(p) < 16 {
		return Format{}, errs.New(errs.KindRawFormat, op, "fmt chunk too short")
	}

	return Format{
		FormatCode:    FormatCode(le16(p[0:2])),
		ChannelCount:  le16(p[2:4]),
		SampleRate:    le32(p[4:8]),
		BytesPerSec:   le32(p[8:12]),
		BlockAlign:    le16(p[12:14]),
		BitsPerSample: le16(p[14:16]),
	}, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
