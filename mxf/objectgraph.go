package mxf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
)

// Set keys for the header metadata object graph spec.md §3 requires:
// Preface -> ContentStorage -> Packages (Material, Source) -> Tracks ->
// Sequences -> SourceClips, with one EssenceDescriptor per
// FileSourcePackage. Every set below is a thin, typed wrapper over the
// generic Set/Tuple machinery in metadataset.go.
var (
	PrefaceKey            = id.MustParseHexUL("060e2b34025301010d01010101012f00")
	ContentStorageKey     = id.MustParseHexUL("060e2b34025301010d01010101011800")
	MaterialPackageKey    = id.MustParseHexUL("060e2b34025301010d01010101013600")
	SourcePackageKey      = id.MustParseHexUL("060e2b34025301010d01010101013700")
	TimelineTrackKey      = id.MustParseHexUL("060e2b34025301010d01010101013b00")
	SequenceKey           = id.MustParseHexUL("060e2b34025301010d01010101010f00")
	SourceClipKey         = id.MustParseHexUL("060e2b34025301010d01010101011100")
)

// local tags used by the object graph's own properties. Descriptor and
// package-level properties beyond these (picture/sound coding details)
// belong to the descriptor package, which builds on the same Set type.
const (
	tagContentStorage      = 0x3B03
	tagPackages            = 0x1901
	tagPackageUID          = 0x4401
	tagPackageTracks       = 0x4403
	tagTrackSequence       = 0x4803
	tagTrackEditRate       = 0x4B01
	tagSequenceComponents  = 0x1001
	tagSequenceDuration    = 0x0202
	tagSourceClipStartPos  = 0x1201
	tagSourceClipSourcePkg = 0x1101
	tagSourceClipSourceTrk = 0x1102
	tagDescriptorRef       = 0x4701
)

// ULs paired with the local tags above so every object-graph property
// resolves through the partition's primer (spec.md §3), not just
// InstanceUID.
var (
	tagContentStorageUL      = id.MustParseHexUL("060e2b34010101010401002900000000")
	tagPackagesUL            = id.MustParseHexUL("060e2b34010101010401002a00000000")
	tagPackageUIDUL          = id.MustParseHexUL("060e2b34010101010401002b00000000")
	tagPackageTracksUL       = id.MustParseHexUL("060e2b34010101010401002c00000000")
	tagTrackSequenceUL       = id.MustParseHexUL("060e2b34010101010401002d00000000")
	tagTrackEditRateUL       = id.MustParseHexUL("060e2b34010101010401002e00000000")
	tagSequenceComponentsUL  = id.MustParseHexUL("060e2b34010101010401002f00000000")
	tagSequenceDurationUL    = id.MustParseHexUL("060e2b34010101010401003000000000")
	tagSourceClipStartPosUL  = id.MustParseHexUL("060e2b34010101010401003100000000")
	tagSourceClipSourcePkgUL = id.MustParseHexUL("060e2b34010101010401003200000000")
	tagSourceClipSourceTrkUL = id.MustParseHexUL("060e2b34010101010401003300000000")
	tagDescriptorRefUL       = id.MustParseHexUL("060e2b34010101010401003400000000")
)

// SourceClip is a single SourceClip component referencing a position in
// a source package's track.
type SourceClip struct {
	InstanceUID    id.UUID
	StartPosition  int64
	SourcePackage  id.UMID
	SourceTrackID  uint32
}

func (c *SourceClip) toSet() *Set {
	s := NewSet(SourceClipKey, c.InstanceUID)

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU64(uint64(c.StartPosition))
	s.Put(tagSourceClipStartPos, tagSourceClipStartPosUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	s.Put(tagSourceClipSourcePkg, tagSourceClipSourcePkgUL, c.SourcePackage.Bytes())

	w2 := membuf.NewWriter(engine)
	w2.WriteU32(c.SourceTrackID)
	s.Put(tagSourceClipSourceTrk, tagSourceClipSourceTrkUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	return s
}

// Sequence is an ordered list of components (only SourceClip is modeled;
// spec.md's component table does not require timeline effects).
type Sequence struct {
	InstanceUID id.UUID
	Duration    int64
	Clips       []*SourceClip
}

func (seq *Sequence) toSet() *Set {
	s := NewSet(SequenceKey, seq.InstanceUID)

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU64(uint64(seq.Duration))
	s.Put(tagSequenceDuration, tagSequenceDurationUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	refs := membuf.NewWriter(engine)
	refs.WriteU32(uint32(len(seq.Clips)))
	refs.WriteU32(id.UUIDSize)
	for _, c := range seq.Clips {
		refs.WriteUUID(c.InstanceUID)
	}
	s.Put(tagSequenceComponents, tagSequenceComponentsUL, append([]byte(nil), refs.Bytes()...))
	refs.Release()

	return s
}

// Track is a single essence or timecode track within a package.
type Track struct {
	InstanceUID id.UUID
	TrackID     uint32
	EditRate    id.Rational
	Sequence    *Sequence
}

func (t *Track) toSet() *Set {
	s := NewSet(TimelineTrackKey, t.InstanceUID)

	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	w.WriteU32(uint32(t.EditRate.Num))
	w.WriteU32(uint32(t.EditRate.Den))
	s.Put(tagTrackEditRate, tagTrackEditRateUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	s.Put(tagTrackSequence, tagTrackSequenceUL, t.Sequence.InstanceUID.Bytes())

	return s
}

// Package is a Material or Source Package: a UMID identity and an
// ordered list of Tracks. A SourcePackage additionally carries a
// DescriptorRef pointing at the essence descriptor set's InstanceUID
// (the descriptor itself lives in the descriptor package, built on Set).
type Package struct {
	Key           id.UL // MaterialPackageKey or SourcePackageKey
	InstanceUID   id.UUID
	PackageUID    id.UMID
	Tracks        []*Track
	DescriptorRef *id.UUID // non-nil for source packages with essence
}

func (p *Package) toSet() *Set {
	s := NewSet(p.Key, p.InstanceUID)
	s.Put(tagPackageUID, tagPackageUIDUL, p.PackageUID.Bytes())

	engine := endian.GetBigEndianEngine()
	refs := membuf.NewWriter(engine)
	refs.WriteU32(uint32(len(p.Tracks)))
	refs.WriteU32(id.UUIDSize)
	for _, t := range p.Tracks {
		refs.WriteUUID(t.InstanceUID)
	}
	s.Put(tagPackageTracks, tagPackageTracksUL, append([]byte(nil), refs.Bytes()...))
	refs.Release()

	if p.DescriptorRef != nil {
		s.Put(tagDescriptorRef, tagDescriptorRefUL, p.DescriptorRef.Bytes())
	}

	return s
}

// ContentStorage holds every Material and Source Package in the file.
type ContentStorage struct {
	InstanceUID id.UUID
	Packages    []*Package
}

func (cs *ContentStorage) toSet() *Set {
	s := NewSet(ContentStorageKey, cs.InstanceUID)

	engine := endian.GetBigEndianEngine()
	refs := membuf.NewWriter(engine)
	refs.WriteU32(uint32(len(cs.Packages)))
	refs.WriteU32(id.UUIDSize)
	for _, p := range cs.Packages {
		refs.WriteUUID(p.InstanceUID)
	}
	s.Put(tagPackages, tagPackagesUL, append([]byte(nil), refs.Bytes()...))
	refs.Release()

	return s
}

// Preface is the root of the header metadata object graph: one per
// header partition, referencing ContentStorage.
type Preface struct {
	InstanceUID    id.UUID
	ContentStorage *ContentStorage
}

func (pf *Preface) toSet() *Set {
	s := NewSet(PrefaceKey, pf.InstanceUID)
	s.Put(tagContentStorage, tagContentStorageUL, pf.ContentStorage.InstanceUID.Bytes())

	return s
}

// ObjectGraph walks a Preface and every set it (transitively)
// references, flattening them into the order they must be written to
// the header partition: Preface first, then ContentStorage, then
// Packages, then Tracks, then Sequences, then SourceClips, per
// spec.md §3's object-graph ordering convention.
func (pf *Preface) ObjectGraph() []*Set {
	var sets []*Set

	sets = append(sets, pf.toSet())
	sets = append(sets, pf.ContentStorage.toSet())

	for _, p := range pf.ContentStorage.Packages {
		sets = append(sets, p.toSet())
	}
	for _, p := range pf.ContentStorage.Packages {
		for _, t := range p.Tracks {
			sets = append(sets, t.toSet())
		}
	}
	for _, p := range pf.ContentStorage.Packages {
		for _, t := range p.Tracks {
			if t.Sequence != nil {
				sets = append(sets, t.Sequence.toSet())
			}
		}
	}
	for _, p := range pf.ContentStorage.Packages {
		for _, t := range p.Tracks {
			if t.Sequence == nil {
				continue
			}
			for _, c := range t.Sequence.Clips {
				sets = append(sets, c.toSet())
			}
		}
	}

	return sets
}

// WriteHeaderMetadata serializes every set in the object graph (in
// order) and the final primer pack, returning the bytes a header
// partition's metadata region must contain: primer pack first, then
// every metadata set.
func WriteHeaderMetadata(pf *Preface, primer *Primer) ([]byte, error) {
	const op = "mxf.WriteHeaderMetadata"

	sets := pf.ObjectGraph()
	if len(sets) == 0 {
		return nil, errs.New(errs.KindParam, op, "empty object graph")
	}

	var body []byte
	for _, s := range sets {
		body = append(body, s.Bytes(primer)...)
	}

	out := make([]byte, 0, len(primer.Bytes())+len(body))
	out = append(out, primer.Bytes()...)
	out = append(out, body...)

	return out, nil
}
