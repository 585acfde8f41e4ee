// Package asdcp implements the per-essence-kind facades of spec.md §4's
// component design layered over the essence-kind-agnostic essence
// package: Picture (JPEG-2000/JPEG-XS), Audio (PCM WAV), TimedText, and
// DCData/PHDR writers and readers. Each facade builds the concrete
// descriptor (and sub-descriptors) its essence kind requires and wires
// the right Operational Pattern / essence-container UL for the
// requested label set (spec.md §4's supplemented "Label-set selection"
// feature), then hands off to essence.OpenWrite/OpenRead for the
// container mechanics.
package asdcp

import (
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// Kind identifies which essence-kind label table a facade selects its
// ULs from.
type Kind uint8

const (
	KindPictureJP2K Kind = iota
	KindPictureJPEGXS
	KindAudioPCM
	KindTimedText
	KindDCData
	KindPHDR
	KindATMOS
)

// labelRow holds the Operational Pattern and essence-container/codec
// ULs for one (Kind, essence.LabelSet) combination. The Interop and
// SMPTE rows differ only in their registered UL values per spec.md §6's
// label_set option; both rows are wired through identical container
// mechanics.
type labelRow struct {
	OperationalPattern id.UL
	EssenceContainer   id.UL
	Codec              id.UL
}

// labelTable maps (kind, label set) to the row of ULs a writer opens
// with. Values follow the SMPTE-ordered registered-identifier UL family
// convention (060e2b34...) used throughout mxf/descriptor; spec.md names
// these ULs only symbolically, so the hex bodies below are this
// module's own concrete assignment within that convention, not
// retrieved constants.
var labelTable = map[Kind]map[essence.LabelSet]labelRow{
	KindPictureJP2K: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109250000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020201000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109050000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020201010000"),
		},
	},
	KindPictureJPEGXS: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109260000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020202000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109260100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020202010000"),
		},
	},
	KindAudioPCM: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109020100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020103000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109020000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020103010000"),
		},
	},
	KindTimedText: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109110000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020601000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109110100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020601010000"),
		},
	},
	KindDCData: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109170000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020700000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109170100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020700010000"),
		},
	},
	KindPHDR: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109180000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020701000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109180100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020701010000"),
		},
	},
	// KindATMOS is a DCData-flavored essence type in its own right (the
	// original asdcp-info tool classifies it as ESS_DCDATA_DOLBY_ATMOS,
	// distinct from plain DCData and PHDR), so it gets its own row
	// rather than reusing KindDCData's codec UL.
	KindATMOS: {
		essence.LabelSetSMPTE: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109190000"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020702000000"),
		},
		essence.LabelSetInterop: {
			OperationalPattern: mxf.OPAtom,
			EssenceContainer:   id.MustParseHexUL("060e2b34040101010d01030109190100"),
			Codec:              id.MustParseHexUL("060e2b34040101010401020702010000"),
		},
	},
}

// Labels returns the Operational Pattern and essence-container/codec
// ULs a facade should open a session with, for the given essence kind
// and label set.
func Labels(kind Kind, set essence.LabelSet) (operationalPattern, essenceContainer, codec id.UL) {
	row := labelTable[kind][set]
	return row.OperationalPattern, row.EssenceContainer, row.Codec
}
