// Package jp2k implements the JPEG-2000 codestream marker walker of
// spec.md §4.4: a state machine that validates and extracts metadata
// from the header markers preceding the compressed tile data (SOD),
// without decoding any sample. The walking idiom — a byte cursor
// advanced by 0xFFxx marker pairs, standalone markers with no payload
// versus length-prefixed segments — is grounded on the marker walker in
// google-wuffs' script/print-jpeg-markers.go.
package jp2k

import (
	"github.com/cinecert/asdcplib-sub002/errs"
)

const (
	markerSOC = 0xFF4F
	markerSIZ = 0xFF51
	markerCOD = 0xFF52
	markerQCD = 0xFF5C
	markerCOM = 0xFF64
	markerCAP = 0xFF50
	markerPRF = 0xFF56
	markerCPF = 0xFF59
	markerSOD = 0xFF93
	markerEOC = 0xFFD9
)

// maxSegmentPayload bounds a single COD/QCD segment so a corrupted
// length field cannot walk the cursor past the codestream.
const maxSegmentPayload = 1 << 20

// Metadata is the subset of JPEG-2000 header fields spec.md §4.4
// requires an essence descriptor to carry.
type Metadata struct {
	Width            uint32
	Height           uint32
	ComponentCount   uint16
	ComponentBitDepth uint8
	SubsamplingX     uint8
	SubsamplingY     uint8

	ProgressionOrder   uint8
	Layers             uint16
	DecompositionLevels uint8
	CodeblockWidth     uint8
	CodeblockHeight    uint8
	Transformation     uint8

	// PlaintextOffset is the byte index of the first byte after the SOD
	// marker: the boundary between cleartext header and the region
	// eligible for encryption.
	PlaintextOffset int
}

type walkState struct {
	data []byte
	pos  int

	sawSOC bool
	sawSIZ bool
	sawCOD bool
	sawQCD bool
	sawSOD bool
}

// Walk validates and extracts Metadata from a JPEG-2000 codestream
// occupying data[0:]. It requires exactly one SIZ, one COD, and one QCD
// segment before SOD; COM, CAP, PRF, CPF are permitted and skipped.
func Walk(data []byte) (Metadata, error) {
	const op = "jp2k.Walk"

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
		case markerSOD:
			if !w.sawSIZ || !w.sawCOD || !w.sawQCD {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "missing required segment before SOD")
			}
			w.sawSOD = true
			md.PlaintextOffset = w.pos

			return md, nil

		case markerEOC:
			return Metadata{}, errs.New(errs.KindRawFormat, op, "unexpected EOC before SOD")

		case markerSIZ:
			if w.sawSIZ {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "duplicate SIZ marker")
			}
			payload, err := w.readSegment(op)
			if err != nil {
				return Metadata{}, err
			}
			if err := parseSIZ(payload, &md); err != nil {
				return Metadata{}, err
			}
			w.sawSIZ = true

		case markerCOD:
			if w.sawCOD {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "duplicate COD marker")
			}
			payload, err := w.readSegment(op)
			if err != nil {
				return Metadata{}, err
			}
			if err := parseCOD(payload, &md); err != nil {
				return Metadata{}, err
			}
			w.sawCOD = true

		case markerQCD:
			if w.sawQCD {
				return Metadata{}, errs.New(errs.KindRawFormat, op, "duplicate QCD marker")
			}
			if _, err := w.readSegment(op); err != nil {
				return Metadata{}, err
			}
			w.sawQCD = true

		case markerCOM, markerCAP, markerPRF, markerCPF:
			if _, err := w.readSegment(op); err != nil {
				return Metadata{}, err
			}

		default:
			return Metadata{}, errs.New(errs.KindRawFormat, op, "unexpected marker before SOD")
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

// readSegment reads a two-byte length (including those two bytes) and
// returns the payload that follows it.
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

// parseSIZ extracts image geometry from the SIZ segment payload.
// Layout (after the 2-byte length already consumed): Rsiz(2) Xsiz(4)
// Ysiz(4) XOsiz(4) YOsiz(4) XTsiz(4) YTsiz(4) XTOsiz(4) YTOsiz(4)
// Csiz(2) then Csiz repetitions of Ssiz(1) XRsiz(1) YRsiz(1).
func parseSIZ(p []byte, md *Metadata) error {
	const op = "jp2k.parseSIZ"
	const fixedLen = 2 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 2
	if len(p) < fixedLen {
		return errs.New(errs.KindRawFormat, op, "SIZ segment too short")
	}

	xsiz := be32(p[2:6])
	ysiz := be32(p[6:10])
	xosiz := be32(p[10:14])
	yosiz := be32(p[14:18])
	csiz := be16(p[34:36])

	if csiz != 3 {
		return errs.New(errs.KindRawFormat, op, "component count must be 3")
	}

	compStart := fixedLen
	if len(p) < compStart+3*int(csiz) {
		return errs.New(errs.KindRawFormat, op, "SIZ component table truncated")
	}

	ssiz := p[compStart]
	xr := p[compStart+1]
	yr := p[compStart+2]

	md.Width = xsiz - xosiz
	md.Height = ysiz - yosiz
	md.ComponentCount = csiz
	md.ComponentBitDepth = (ssiz & 0x7F) + 1
	md.SubsamplingX = xr
	md.SubsamplingY = yr

	return nil
}

// parseCOD extracts coding style parameters from the COD segment
// payload. Layout: Scod(1) progression order(1) layers(2) multiple
// component transform(1, ignored) decomposition levels(1) codeblock
// width(1) codeblock height(1) codeblock style(1, ignored)
// transformation(1).
func parseCOD(p []byte, md *Metadata) error {
	const op = "jp2k.parseCOD"
	if len(p) < 10 {
		return errs.New(errs.KindRawFormat, op, "COD segment too short")
	}

	md.ProgressionOrder = p[1]
	md.Layers = be16(p[2:4])
	md.DecompositionLevels = p[5]
	md.CodeblockWidth = p[6]
	md.CodeblockHeight = p[7]
	md.Transformation = p[9]

	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
