// Package jxs implements the JPEG-XS codestream marker walker of
// spec.md §4.5, following the same standalone/segment marker-pair idiom
// as package jp2k.
package jxs

import "github.com/cinecert/asdcplib-sub002/errs"

const (
	markerSOC = 0xFF10
	markerPIH = 0xFF12
	markerCDT = 0xFF13
	markerSLH = 0xFF20
)

const maxSegmentPayload = 1 << 20

// Metadata is the subset of JPEG-XS header fields spec.md §4.5 requires.
type Metadata struct {
	Width       uint16
	Height      uint16
	SliceHeight uint16
	Profile     uint8
	Level       uint8

	ComponentCount uint8
	BitDepth       []uint8
	SubsamplingH   []uint8
	SubsamplingV   []uint8

	// Ng, Ss, Nly are coding-parameter invariants spec.md §4.5 requires
	// every conformant frame to carry: group size (always 4),
	// significance bits (always 8), and layer count (at most 1).
	Ng  uint8
	Ss  uint8
	Nly uint8

	// PlaintextOffset is the byte index of the first byte after the SLH
	// marker that introduces the first slice's data.
	PlaintextOffset int
}

type walkState struct {
	data []byte
	pos  int

	sawSOC bool
	sawPIH bool
}

// Walk validates and extracts Metadata from a JPEG-XS codestream.
func Walk(data []byte) (Metadata, error) {
	const op = "jxs.Walk"

	w := &walkState{data: data}
	var md Metadata

	marker, err := w.readMarker(op)
	if err != nil {
		return Metadata{}, err
	}
	if marker != markerSOC {
		return Metadata{}, errs.New(errs.KindRawFormat, op, "codestream must begin with SOC")
	}
	w.sawSOC = true

	for {
		marker, err := w.readMarker(op)
		if err != nil {
			return Metadata{}, err
		}

		switch marker {
		case markerSOC:
			return Metadata{}, errs.New(errs.KindRawFormat, op, "duplicate SOC marker")

		case markerPIH:
			if w.sawPIH {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "duplicate PIH marker")
			}
			payload, err := w.readSegment(op)
			if err != nil {
				return Metadata{}, err
			}
			if err := parsePIH(payload, &md); err != nil {
				return Metadata{}, err
			}
			w.sawPIH = true

		case markerCDT:
			if !w.sawPIH {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "CDT before PIH")
			}
			payload, err := w.readSegment(op)
			if err != nil {
				return Metadata{}, err
			}
			if err := parseCDT(payload, &md); err != nil {
				return Metadata{}, err
			}

		case markerSLH:
			if !w.sawPIH {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "SLH before PIH")
			}
			if md.SliceHeight == 0 || md.SliceHeight > 65535 {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "unsupported slice height")
			}

			md.PlaintextOffset = w.pos

			return md, nil

		default:
			return Metadata{}, errs.New(errs.KindRawFormat, op, "unexpected marker before SLH")
		}
	}
}

func (w *walkState) readMarker(op string) (uint16, error) {
	if w.pos+2 > len(w.data) {
		return 0, errs.New(errs.KindRawFormat, op, "truncated marker")
	}

	m := uint16(w.data[w.pos])<<8 | uint16(w.data[w.pos+1])
	w.pos += 2

	return m, nil
}

func (w *walkState) readSegment(op string) ([]byte, error) {
	if w.pos+2 > len(w.data) {
		return nil, errs.New(errs.KindRawFormat, op, "truncated segment length")
	}

	segLen := int(w.data[w.pos])<<8 | int(w.data[w.pos+1])
	if segLen < 2 || segLen > maxSegmentPayload {
		return nil, errs.New(errs.KindRawFormat, op, "oversized or invalid segment length")
	}

	payloadStart := w.pos + 2
	payloadEnd := w.pos + segLen
	if payloadEnd > len(w.data) {
		return nil, errs.New(errs.KindRawFormat, op, "segment runs past end of buffer")
	}

	w.pos = payloadEnd

	return w.data[payloadStart:payloadEnd], nil
}

// parsePIH extracts picture-level fields from the picture header
// segment: Lcod(4, ignored) profile/level word(4: profile in its second
// byte, level in its last) Width(2) Height(2) slice height(2), two
// skipped bytes, component count(1), Ng(1) Ss(1) Nly(1); this walker
// extracts the fields spec.md §4.5 names: width, height, slice height,
// profile/level, component count.
func parsePIH(p []byte, md *Metadata) error {
	const op = "jxs.parsePIH"
	const minLen = 4 + 4 + 2 + 2 + 2 + 2 + 1 + 3
	if len(p) < minLen {
		return errs.New(errs.KindRawFormat, op, "PIH segment too short")
	}

	off := 4 // skip LCod
	profileLevel := be32(p[off : off+4])
	off += 4
	md.Profile = uint8(profileLevel >> 16)
	md.Level = uint8(profileLevel)

	md.Width = be16(p[off : off+2])
	off += 2
	md.Height = be16(p[off : off+2])
	off += 2
	md.SliceHeight = be16(p[off : off+2])
	off += 2

	// Skip 2 reserved/bit-depth bytes to reach component count.
	off += 2
	md.ComponentCount = p[off]
	off++

	md.Ng = p[off]
	md.Ss = p[off+1]
	md.Nly = p[off+2]

	if md.Ng != 4 {
		return errs.New(errs.KindRawFormat, op, "Ng must be 4")
	}
	if md.Ss != 8 {
		return errs.New(errs.KindRawFormat, op, "Ss must be 8")
	}
	if md.Nly > 1 {
		return errs.New(errs.KindRawFormat, op, "Nly must be at most 1")
	}

	return nil
}

// parseCDT extracts per-component bit depth and h/v subsampling.
// Layout: one (bit depth, Sx, Sy) triple per component.
func parseCDT(p []byte, md *Metadata) error {
	const op = "jxs.parseCDT"
	want := int(md.ComponentCount) * 3
	if len(p) < want {
		return errs.New(errs.KindRawFormat, op, "CDT segment shorter than component count implies")
	}

	md.BitDepth = make([]uint8, md.ComponentCount)
	md.SubsamplingH = make([]uint8, md.ComponentCount)
	md.SubsamplingV = make([]uint8, md.ComponentCount)

	for i := 0; i < int(md.ComponentCount); i++ {
		md.BitDepth[i] = p[i*3]
		md.SubsamplingH[i] = p[i*3+1]
		md.SubsamplingV[i] = p[i*3+2]
	}

	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
