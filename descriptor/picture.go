package descriptor

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// Set keys for the picture descriptor family.
var (
	PictureEssenceDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101014900")
	CDCIEssenceDescriptorKey    = id.MustParseHexUL("060e2b34025301010d01010101012800")
	RGBAEssenceDescriptorKey    = id.MustParseHexUL("060e2b34025301010d01010101012900")
)

const (
	tagStoredWidth         = 0x3203
	tagStoredHeight        = 0x3202
	tagAspectRatio         = 0x320E
	tagPictureEssenceCoding = 0x3201

	tagComponentDepth        = 0x3301
	tagHorizontalSubsampling = 0x3302
	tagVerticalSubsampling   = 0x3303
	tagColorSiting           = 0x3505

	tagComponentMaxRef = 0x3308
	tagComponentMinRef = 0x3309
)

var (
	tagStoredWidthUL            = id.MustParseHexUL("060e2b34010101010401000a00000000")
	tagStoredHeightUL           = id.MustParseHexUL("060e2b34010101010401000b00000000")
	tagAspectRatioUL            = id.MustParseHexUL("060e2b34010101010401000c00000000")
	tagPictureEssenceCodingUL   = id.MustParseHexUL("060e2b34010101010401000d00000000")
	tagComponentDepthUL         = id.MustParseHexUL("060e2b34010101010401000e00000000")
	tagHorizontalSubsamplingUL  = id.MustParseHexUL("060e2b34010101010401000f00000000")
	tagVerticalSubsamplingUL    = id.MustParseHexUL("060e2b34010101010401001000000000")
	tagColorSitingUL            = id.MustParseHexUL("060e2b34010101010401001100000000")
	tagComponentMaxRefUL        = id.MustParseHexUL("060e2b34010101010401001200000000")
	tagComponentMinRefUL        = id.MustParseHexUL("060e2b34010101010401001300000000")
)

// PictureEssenceDescriptor extends FileDescriptor with the properties
// common to every picture essence, regardless of color model.
type PictureEssenceDescriptor struct {
	FileDescriptor
	StoredWidth          uint32
	StoredHeight         uint32
	AspectRatio          id.Rational
	PictureEssenceCoding id.UL
}

func putPictureFields(s *mxf.Set, pd PictureEssenceDescriptor) {
	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU32(pd.StoredWidth)
	s.Put(tagStoredWidth, tagStoredWidthUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	w2 := membuf.NewWriter(engine)
	w2.WriteU32(pd.StoredHeight)
	s.Put(tagStoredHeight, tagStoredHeightUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	w3 := membuf.NewWriter(engine)
	w3.WriteU32(uint32(pd.AspectRatio.Num))
	w3.WriteU32(uint32(pd.AspectRatio.Den))
	s.Put(tagAspectRatio, tagAspectRatioUL, append([]byte(nil), w3.Bytes()...))
	w3.Release()

	s.Put(tagPictureEssenceCoding, tagPictureEssenceCodingUL, pd.PictureEssenceCoding.Bytes())
}

func readPictureFields(s *mxf.Set) (PictureEssenceDescriptor, error) {
	const op = "descriptor.readPictureFields"

	fd, err := readFileDescriptorFields(s)
	if err != nil {
		return PictureEssenceDescriptor{}, err
	}
	pd := PictureEssenceDescriptor{FileDescriptor: fd}

	engine := endian.GetBigEndianEngine()

	if raw, ok := s.Get(tagStoredWidth); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return pd, errs.Wrap(errs.KindFormat, op, err)
		}
		pd.StoredWidth = v
	}

	if raw, ok := s.Get(tagStoredHeight); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return pd, errs.Wrap(errs.KindFormat, op, err)
		}
		pd.StoredHeight = v
	}

	if raw, ok := s.Get(tagAspectRatio); ok {
		r := membuf.NewReader(raw, engine)
		num, err := r.ReadU32()
		if err != nil {
			return pd, errs.Wrap(errs.KindFormat, op, err)
		}
		den, err := r.ReadU32()
		if err != nil {
			return pd, errs.Wrap(errs.KindFormat, op, err)
		}
		pd.AspectRatio = id.NewRational(int32(num), int32(den))
	}

	if raw, ok := s.Get(tagPictureEssenceCoding); ok {
		ul, err := id.ParseUL(raw)
		if err != nil {
			return pd, errs.Wrap(errs.KindFormat, op, err)
		}
		pd.PictureEssenceCoding = ul
	}

	return pd, nil
}

// ToSet serializes pd (without the color-model-specific fields a
// CDCI/RGBA wrapper adds) as a standalone PictureEssenceDescriptor set.
func (pd PictureEssenceDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(PictureEssenceDescriptorKey, pd.InstanceUID)
	putFileDescriptorFields(s, pd.FileDescriptor)
	putPictureFields(s, pd)

	return s
}

// ParsePictureEssenceDescriptor decodes a PictureEssenceDescriptor set.
func ParsePictureEssenceDescriptor(value []byte, primer *mxf.Primer) (PictureEssenceDescriptor, error) {
	set, err := mxf.ParseSet(PictureEssenceDescriptorKey, value, primer)
	if err != nil {
		return PictureEssenceDescriptor{}, err
	}

	return readPictureFields(set)
}

// CDCIEssenceDescriptor describes 4:2:2 / 4:2:0 component video, the
// color model JPEG-2000 and JPEG-XS essence in a DCP/IMF typically use.
type CDCIEssenceDescriptor struct {
	PictureEssenceDescriptor
	ComponentDepth        uint32
	HorizontalSubsampling uint32
	VerticalSubsampling   uint32
	ColorSiting           uint8
}

// ToSet serializes cd as a complete CDCIEssenceDescriptor set.
func (cd CDCIEssenceDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(CDCIEssenceDescriptorKey, cd.InstanceUID)
	putFileDescriptorFields(s, cd.FileDescriptor)
	putPictureFields(s, cd.PictureEssenceDescriptor)

	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU32(cd.ComponentDepth)
	s.Put(tagComponentDepth, tagComponentDepthUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	w2 := membuf.NewWriter(engine)
	w2.WriteU32(cd.HorizontalSubsampling)
	s.Put(tagHorizontalSubsampling, tagHorizontalSubsamplingUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	w3 := membuf.NewWriter(engine)
	w3.WriteU32(cd.VerticalSubsampling)
	s.Put(tagVerticalSubsampling, tagVerticalSubsamplingUL, append([]byte(nil), w3.Bytes()...))
	w3.Release()

	s.Put(tagColorSiting, tagColorSitingUL, []byte{cd.ColorSiting})

	return s
}

// ParseCDCIEssenceDescriptor decodes a CDCIEssenceDescriptor set.
func ParseCDCIEssenceDescriptor(value []byte, primer *mxf.Primer) (CDCIEssenceDescriptor, error) {
	const op = "descriptor.ParseCDCIEssenceDescriptor"

	set, err := mxf.ParseSet(CDCIEssenceDescriptorKey, value, primer)
	if err != nil {
		return CDCIEssenceDescriptor{}, err
	}

	pd, err := readPictureFields(set)
	if err != nil {
		return CDCIEssenceDescriptor{}, err
	}
	cd := CDCIEssenceDescriptor{PictureEssenceDescriptor: pd}

	engine := endian.GetBigEndianEngine()

	if raw, ok := set.Get(tagComponentDepth); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return cd, errs.Wrap(errs.KindFormat, op, err)
		}
		cd.ComponentDepth = v
	}

	if raw, ok := set.Get(tagHorizontalSubsampling); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return cd, errs.Wrap(errs.KindFormat, op, err)
		}
		cd.HorizontalSubsampling = v
	}

	if raw, ok := set.Get(tagVerticalSubsampling); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return cd, errs.Wrap(errs.KindFormat, op, err)
		}
		cd.VerticalSubsampling = v
	}

	if raw, ok := set.Get(tagColorSiting); ok && len(raw) == 1 {
		cd.ColorSiting = raw[0]
	}

	return cd, nil
}

// RGBAEssenceDescriptor describes full-raster RGB/RGBA picture essence.
type RGBAEssenceDescriptor struct {
	PictureEssenceDescriptor
	ComponentMaxRef uint32
	ComponentMinRef uint32
}

// ToSet serializes rd as a complete RGBAEssenceDescriptor set.
func (rd RGBAEssenceDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(RGBAEssenceDescriptorKey, rd.InstanceUID)
	putFileDescriptorFields(s, rd.FileDescriptor)
	putPictureFields(s, rd.PictureEssenceDescriptor)

	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU32(rd.ComponentMaxRef)
	s.Put(tagComponentMaxRef, tagComponentMaxRefUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	w2 := membuf.NewWriter(engine)
	w2.WriteU32(rd.ComponentMinRef)
	s.Put(tagComponentMinRef, tagComponentMinRefUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	return s
}

// ParseRGBAEssenceDescriptor decodes an RGBAEssenceDescriptor set.
func ParseRGBAEssenceDescriptor(value []byte, primer *mxf.Primer) (RGBAEssenceDescriptor, error) {
	const op = "descriptor.ParseRGBAEssenceDescriptor"

	set, err := mxf.ParseSet(RGBAEssenceDescriptorKey, value, primer)
	if err != nil {
		return RGBAEssenceDescriptor{}, err
	}

	pd, err := readPictureFields(set)
	if err != nil {
		return RGBAEssenceDescriptor{}, err
	}
	rd := RGBAEssenceDescriptor{PictureEssenceDescriptor: pd}

	engine := endian.GetBigEndianEngine()

	if raw, ok := set.Get(tagComponentMaxRef); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return rd, errs.Wrap(errs.KindFormat, op, err)
		}
		rd.ComponentMaxRef = v
	}

	if raw, ok := set.Get(tagComponentMinRef); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return rd, errs.Wrap(errs.KindFormat, op, err)
		}
		rd.ComponentMinRef = v
	}

	return rd, nil
}
