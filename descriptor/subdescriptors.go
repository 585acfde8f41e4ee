package descriptor

import (
	"github.com/cinecert/asdcplib-sub002/codestream/jp2k"
	"github.com/cinecert/asdcplib-sub002/codestream/jxs"
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// Set keys for the sub-descriptors spec.md §3 names: per-codestream
// coding parameters (JP2K, JPEG-XS) and per-channel audio labeling
// (MCALabelSubDescriptor family).
var (
	JPEG2000PictureSubDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101015a00")
	JPEGXSPictureSubDescriptorKey   = id.MustParseHexUL("060e2b34025301010d01010101015b00")
	MCALabelSubDescriptorKey        = id.MustParseHexUL("060e2b34025301010d01010101014000")
)

const (
	tagJ2KRsiz                = 0x6201
	tagJ2KProgressionOrder     = 0x6202
	tagJ2KLayers               = 0x6203
	tagJ2KDecompositionLevels = 0x6204
	tagJ2KCodeblockWidth       = 0x6205
	tagJ2KCodeblockHeight      = 0x6206

	tagJXSProfile     = 0x6301
	tagJXSLevel       = 0x6302
	tagJXSSliceHeight = 0x6303

	tagMCALabelDictionaryID = 0x6101
	tagMCALinkID            = 0x6102
	tagMCATagSymbol         = 0x6103
	tagMCAChannelID         = 0x6104
)

var (
	tagJ2KProgressionOrderUL    = id.MustParseHexUL("060e2b34010101010401001700000000")
	tagJ2KLayersUL              = id.MustParseHexUL("060e2b34010101010401001800000000")
	tagJ2KDecompositionLevelsUL = id.MustParseHexUL("060e2b34010101010401001900000000")
	tagJ2KCodeblockWidthUL      = id.MustParseHexUL("060e2b34010101010401001a00000000")
	tagJ2KCodeblockHeightUL     = id.MustParseHexUL("060e2b34010101010401001b00000000")

	tagJXSProfileUL     = id.MustParseHexUL("060e2b34010101010401001400000000")
	tagJXSLevelUL       = id.MustParseHexUL("060e2b34010101010401001500000000")
	tagJXSSliceHeightUL = id.MustParseHexUL("060e2b34010101010401001600000000")

	tagMCALabelDictionaryIDUL = id.MustParseHexUL("060e2b34010101010401001c00000000")
	tagMCALinkIDUL            = id.MustParseHexUL("060e2b34010101010401001d00000000")
	tagMCATagSymbolUL         = id.MustParseHexUL("060e2b34010101010401001e00000000")
	tagMCAChannelIDUL         = id.MustParseHexUL("060e2b34010101010401001f00000000")
)

// JPEG2000PictureSubDescriptor carries the coding parameters
// codestream/jp2k.Walk extracts from a frame's SOC/SIZ/COD markers,
// promoted to a standalone metadata sub-descriptor so a reader can
// inspect coding parameters without re-parsing a frame's codestream.
type JPEG2000PictureSubDescriptor struct {
	InstanceUID         id.UUID
	ProgressionOrder    uint8
	Layers              uint16
	DecompositionLevels uint8
	CodeblockWidth      uint8
	CodeblockHeight     uint8
}

// JPEG2000SubDescriptorFromMetadata populates a JPEG2000PictureSubDescriptor from a parsed
// codestream's metadata.
func JPEG2000SubDescriptorFromMetadata(instanceUID id.UUID, md jp2k.Metadata) JPEG2000PictureSubDescriptor {
	return JPEG2000PictureSubDescriptor{
		InstanceUID:         instanceUID,
		ProgressionOrder:    md.ProgressionOrder,
		Layers:              md.Layers,
		DecompositionLevels: md.DecompositionLevels,
		CodeblockWidth:      md.CodeblockWidth,
		CodeblockHeight:     md.CodeblockHeight,
	}
}

// ToSet serializes jd as a complete JPEG2000PictureSubDescriptor set.
func (jd JPEG2000PictureSubDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(JPEG2000PictureSubDescriptorKey, jd.InstanceUID)

	s.Put(tagJ2KProgressionOrder, tagJ2KProgressionOrderUL, []byte{jd.ProgressionOrder})

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU16(jd.Layers)
	s.Put(tagJ2KLayers, tagJ2KLayersUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	s.Put(tagJ2KDecompositionLevels, tagJ2KDecompositionLevelsUL, []byte{jd.DecompositionLevels})
	s.Put(tagJ2KCodeblockWidth, tagJ2KCodeblockWidthUL, []byte{jd.CodeblockWidth})
	s.Put(tagJ2KCodeblockHeight, tagJ2KCodeblockHeightUL, []byte{jd.CodeblockHeight})

	return s
}

// ParseJPEG2000PictureSubDescriptor decodes a JPEG2000PictureSubDescriptor set.
func ParseJPEG2000PictureSubDescriptor(value []byte, primer *mxf.Primer) (JPEG2000PictureSubDescriptor, error) {
	const op = "descriptor.ParseJPEG2000PictureSubDescriptor"

	set, err := mxf.ParseSet(JPEG2000PictureSubDescriptorKey, value, primer)
	if err != nil {
		return JPEG2000PictureSubDescriptor{}, err
	}
	jd := JPEG2000PictureSubDescriptor{InstanceUID: set.InstanceUID}

	if raw, ok := set.Get(tagJ2KProgressionOrder); ok && len(raw) == 1 {
		jd.ProgressionOrder = raw[0]
	}

	if raw, ok := set.Get(tagJ2KLayers); ok {
		r := membuf.NewReader(raw, endian.GetBigEndianEngine())
		v, err := r.ReadU16()
		if err != nil {
			return jd, errs.Wrap(errs.KindFormat, op, err)
		}
		jd.Layers = v
	}

	if raw, ok := set.Get(tagJ2KDecompositionLevels); ok && len(raw) == 1 {
		jd.DecompositionLevels = raw[0]
	}
	if raw, ok := set.Get(tagJ2KCodeblockWidth); ok && len(raw) == 1 {
		jd.CodeblockWidth = raw[0]
	}
	if raw, ok := set.Get(tagJ2KCodeblockHeight); ok && len(raw) == 1 {
		jd.CodeblockHeight = raw[0]
	}

	return jd, nil
}

// JPEGXSPictureSubDescriptor carries the coding parameters
// codestream/jxs.Walk extracts from a frame's SOC/PIH markers.
type JPEGXSPictureSubDescriptor struct {
	InstanceUID id.UUID
	Profile     uint8
	Level       uint8
	SliceHeight uint16
}

// JPEGXSSubDescriptorFromMetadata populates a JPEGXSPictureSubDescriptor
// from a parsed codestream's metadata.
func JPEGXSSubDescriptorFromMetadata(instanceUID id.UUID, md jxs.Metadata) JPEGXSPictureSubDescriptor {
	return JPEGXSPictureSubDescriptor{
		InstanceUID: instanceUID,
		Profile:     md.Profile,
		Level:       md.Level,
		SliceHeight: md.SliceHeight,
	}
}

// ToSet serializes jd as a complete JPEGXSPictureSubDescriptor set.
func (jd JPEGXSPictureSubDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(JPEGXSPictureSubDescriptorKey, jd.InstanceUID)

	s.Put(tagJXSProfile, tagJXSProfileUL, []byte{jd.Profile})
	s.Put(tagJXSLevel, tagJXSLevelUL, []byte{jd.Level})

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU16(jd.SliceHeight)
	s.Put(tagJXSSliceHeight, tagJXSSliceHeightUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	return s
}

// ParseJPEGXSPictureSubDescriptor decodes a JPEGXSPictureSubDescriptor set.
func ParseJPEGXSPictureSubDescriptor(value []byte, primer *mxf.Primer) (JPEGXSPictureSubDescriptor, error) {
	const op = "descriptor.ParseJPEGXSPictureSubDescriptor"

	set, err := mxf.ParseSet(JPEGXSPictureSubDescriptorKey, value, primer)
	if err != nil {
		return JPEGXSPictureSubDescriptor{}, err
	}
	jd := JPEGXSPictureSubDescriptor{InstanceUID: set.InstanceUID}

	if raw, ok := set.Get(tagJXSProfile); ok && len(raw) == 1 {
		jd.Profile = raw[0]
	}
	if raw, ok := set.Get(tagJXSLevel); ok && len(raw) == 1 {
		jd.Level = raw[0]
	}
	if raw, ok := set.Get(tagJXSSliceHeight); ok {
		r := membuf.NewReader(raw, endian.GetBigEndianEngine())
		v, err := r.ReadU16()
		if err != nil {
			return jd, errs.Wrap(errs.KindFormat, op, err)
		}
		jd.SliceHeight = v
	}

	return jd, nil
}

// MCALabelSubDescriptor labels one audio channel within a
// WaveAudioDescriptor's track per SMPTE 377-4 MCA (Multichannel Audio)
// labeling: which dictionary the tag symbol is drawn from, the sound
// field group this channel links to, and its channel index.
type MCALabelSubDescriptor struct {
	InstanceUID         id.UUID
	MCALabelDictionaryID id.UL
	MCALinkID           id.UUID
	MCATagSymbol        string
	MCAChannelID        uint32
}

// ToSet serializes md as a complete MCALabelSubDescriptor set.
func (md MCALabelSubDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(MCALabelSubDescriptorKey, md.InstanceUID)

	s.Put(tagMCALabelDictionaryID, tagMCALabelDictionaryIDUL, md.MCALabelDictionaryID.Bytes())
	s.Put(tagMCALinkID, tagMCALinkIDUL, md.MCALinkID.Bytes())
	s.Put(tagMCATagSymbol, tagMCATagSymbolUL, []byte(md.MCATagSymbol))

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU32(md.MCAChannelID)
	s.Put(tagMCAChannelID, tagMCAChannelIDUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	return s
}

// ParseMCALabelSubDescriptor decodes an MCALabelSubDescriptor set.
func ParseMCALabelSubDescriptor(value []byte, primer *mxf.Primer) (MCALabelSubDescriptor, error) {
	const op = "descriptor.ParseMCALabelSubDescriptor"

	set, err := mxf.ParseSet(MCALabelSubDescriptorKey, value, primer)
	if err != nil {
		return MCALabelSubDescriptor{}, err
	}
	md := MCALabelSubDescriptor{InstanceUID: set.InstanceUID}

	if raw, ok := set.Get(tagMCALabelDictionaryID); ok {
		ul, err := id.ParseUL(raw)
		if err != nil {
			return md, errs.Wrap(errs.KindFormat, op, err)
		}
		md.MCALabelDictionaryID = ul
	}

	if raw, ok := set.Get(tagMCALinkID); ok {
		uuid, err := id.ParseUUID(raw)
		if err != nil {
			return md, errs.Wrap(errs.KindFormat, op, err)
		}
		md.MCALinkID = uuid
	}

	if raw, ok := set.Get(tagMCATagSymbol); ok {
		md.MCATagSymbol = string(raw)
	}

	if raw, ok := set.Get(tagMCAChannelID); ok {
		r := membuf.NewReader(raw, endian.GetBigEndianEngine())
		v, err := r.ReadU32()
		if err != nil {
			return md, errs.Wrap(errs.KindFormat, op, err)
		}
		md.MCAChannelID = v
	}

	return md, nil
}
