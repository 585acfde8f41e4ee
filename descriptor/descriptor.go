// Package descriptor implements the tagged-variant essence descriptors
// of spec.md §3: FileDescriptor and its PictureEssenceDescriptor /
// WaveAudioDescriptor / TimedTextDescriptor / DataEssenceDescriptor
// specializations, plus the JPEG-2000, JPEG-XS, and MCA audio-labeling
// sub-descriptors. Every descriptor is a thin typed wrapper over
// mxf.Set, mirroring the way section.NumericHeader and
// section.TextHeader in the teacher repo share a common fixed-layout
// header shape while differing in their own fields.
package descriptor

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// FileDescriptorKey is the SMPTE 377 FileDescriptor set key; concrete
// subtypes below use their own, more specific keys, but every
// descriptor embeds FileDescriptor's property set.
var FileDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101012700")

// Local tags for the properties FileDescriptor carries; subtype
// packages define their own tag constants starting from a disjoint
// range to avoid collision when multiple descriptors are registered
// against the same primer.
const (
	tagSampleRate        = 0x3001
	tagContainerDuration = 0x2003
	tagEssenceContainer  = 0x2F01
	tagCodec             = 0x3005
	tagSubDescriptors    = 0x2F08
)

var (
	tagSampleRateUL        = id.MustParseHexUL("060e2b34010101010401000100000000")
	tagContainerDurationUL = id.MustParseHexUL("060e2b34010101010401000200000000")
	tagEssenceContainerUL  = id.MustParseHexUL("060e2b34010101010401000300000000")
	tagCodecUL             = id.MustParseHexUL("060e2b34010101010401000400000000")
	tagSubDescriptorsUL    = id.MustParseHexUL("060e2b34010101010401000500000000")
)

// FileDescriptor carries the properties common to every essence
// descriptor: the sample rate the essence is clocked at, the container
// duration in edit units, the essence container UL identifying the
// wrapping (AS-DCP OP-Atom vs AS-02 OP-1a body format), and the codec
// (essence coding) UL.
type FileDescriptor struct {
	InstanceUID       id.UUID
	SampleRate        id.Rational
	ContainerDuration uint64
	EssenceContainer  id.UL
	Codec             id.UL
}

// putFileDescriptorFields writes FileDescriptor's own tuples into s.
func putFileDescriptorFields(s *mxf.Set, fd FileDescriptor) {
	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU32(uint32(fd.SampleRate.Num))
	w.WriteU32(uint32(fd.SampleRate.Den))
	s.Put(tagSampleRate, tagSampleRateUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	w2 := membuf.NewWriter(engine)
	w2.WriteU64(fd.ContainerDuration)
	s.Put(tagContainerDuration, tagContainerDurationUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	s.Put(tagEssenceContainer, tagEssenceContainerUL, fd.EssenceContainer.Bytes())
	s.Put(tagCodec, tagCodecUL, fd.Codec.Bytes())
}

// PatchContainerDuration rewrites the ContainerDuration tuple already
// present in s in place, for essence.Writer.Finalize to update a
// descriptor set's duration after the true edit-unit count is known,
// without rebuilding the whole set (and thus without perturbing any
// other tuple's position or the tags the primer already allocated).
func PatchContainerDuration(s *mxf.Set, n uint64) {
	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU64(n)
	s.Put(tagContainerDuration, tagContainerDurationUL, append([]byte(nil), w.Bytes()...))
	w.Release()
}

// PutSubDescriptorRefs writes the strong-reference array linking a
// descriptor set to its sub-descriptors (spec.md §3's
// JPEG2000PictureSubDescriptor / JPEGXSPictureSubDescriptor /
// MCALabelSubDescriptor family), in the same (count, entry size, UUID...)
// shape mxf.ContentStorage uses for its Packages array.
func PutSubDescriptorRefs(s *mxf.Set, uids []id.UUID) {
	engine := endian.GetBigEndianEngine()

	refs := membuf.NewWriter(engine)
	refs.WriteU32(uint32(len(uids)))
	refs.WriteU32(id.UUIDSize)
	for _, u := range uids {
		refs.WriteUUID(u)
	}
	s.Put(tagSubDescriptors, tagSubDescriptorsUL, append([]byte(nil), refs.Bytes()...))
	refs.Release()
}

// GetSubDescriptorRefs reads back the strong-reference array written by
// PutSubDescriptorRefs, if s carries one. A descriptor with no
// sub-descriptors returns a nil slice and ok=false.
func GetSubDescriptorRefs(s *mxf.Set) (uids []id.UUID, ok bool, err error) {
	const op = "descriptor.GetSubDescriptorRefs"

	raw, present := s.Get(tagSubDescriptors)
	if !present {
		return nil, false, nil
	}

	engine := endian.GetBigEndianEngine()
	r := membuf.NewReader(raw, engine)

	count, rerr := r.ReadU32()
	if rerr != nil {
		return nil, false, errs.Wrap(errs.KindFormat, op, rerr)
	}
	if _, rerr := r.ReadU32(); rerr != nil { // entry size, unused
		return nil, false, errs.Wrap(errs.KindFormat, op, rerr)
	}

	uids = make([]id.UUID, 0, count)
	for i := uint32(0); i < count; i++ {
		u, rerr := r.ReadUUID()
		if rerr != nil {
			return nil, false, errs.Wrap(errs.KindFormat, op, rerr)
		}
		uids = append(uids, u)
	}

	return uids, true, nil
}

// readFileDescriptorFields reads FileDescriptor's own tuples from s.
func readFileDescriptorFields(s *mxf.Set) (FileDescriptor, error) {
	const op = "descriptor.readFileDescriptorFields"
	fd := FileDescriptor{InstanceUID: s.InstanceUID}
	engine := endian.GetBigEndianEngine()

	if raw, ok := s.Get(tagSampleRate); ok {
		r := membuf.NewReader(raw, engine)
		num, err := r.ReadU32()
		if err != nil {
			return fd, errs.Wrap(errs.KindFormat, op, err)
		}
		den, err := r.ReadU32()
		if err != nil {
			return fd, errs.Wrap(errs.KindFormat, op, err)
		}
		fd.SampleRate = id.NewRational(int32(num), int32(den))
	}

	if raw, ok := s.Get(tagContainerDuration); ok {
		r := membuf.NewReader(raw, engine)
		d, err := r.ReadU64()
		if err != nil {
			return fd, errs.Wrap(errs.KindFormat, op, err)
		}
		fd.ContainerDuration = d
	}

	if raw, ok := s.Get(tagEssenceContainer); ok {
		ul, err := id.ParseUL(raw)
		if err != nil {
			return fd, errs.Wrap(errs.KindFormat, op, err)
		}
		fd.EssenceContainer = ul
	}

	if raw, ok := s.Get(tagCodec); ok {
		ul, err := id.ParseUL(raw)
		if err != nil {
			return fd, errs.Wrap(errs.KindFormat, op, err)
		}
		fd.Codec = ul
	}

	return fd, nil
}
