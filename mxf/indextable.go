package mxf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
)

// IndexTableSegmentKey is the SMPTE 377 Index Table Segment set key.
var IndexTableSegmentKey = id.MustParseHexUL("060e2b34020501010d01020101100100")

// IndexEntry is one edit unit's entry in an index table segment: the
// byte offset of the frame within the essence container body, plus the
// bookkeeping flags spec.md §3 carries over from the source format.
type IndexEntry struct {
	TemporalOffset int8
	KeyFrameOffset int8
	Flags          uint8
	StreamOffset   uint64
}

// IndexTableSegment maps edit units to byte offsets within one body
// partition's essence container, letting a reader seek directly to any
// frame without scanning the KLV stream, per spec.md §3 and §4.8.
type IndexTableSegment struct {
	InstanceUID   id.UUID
	IndexEditRate id.Rational
	IndexDuration uint64
	IndexSID      uint32
	BodySID       uint32
	EditUnitSize  uint32 // 0 for variable-size essence (CBE vs VBE per spec.md §4.8)
	Entries       []IndexEntry
}

// Append records the byte offset of the next edit unit.
func (seg *IndexTableSegment) Append(e IndexEntry) {
	seg.Entries = append(seg.Entries, e)
}

// Bytes serializes the index table segment as a complete KLV triple.
// IndexEditRate, IndexSID, and the other scalar fields are written as a
// flat set of local tuples through Set so the same primer-tag machinery
// used for object-graph sets applies here too.
func (seg *IndexTableSegment) Bytes(primer *Primer) []byte {
	set := NewSet(IndexTableSegmentKey, seg.InstanceUID)

	engine := endian.GetBigEndianEngine()

	rateBuf := membuf.NewWriter(engine)
	rateBuf.WriteU32(uint32(seg.IndexEditRate.Num))
	rateBuf.WriteU32(uint32(seg.IndexEditRate.Den))
	set.Put(indexEditRateTag, indexEditRateTagUL, append([]byte(nil), rateBuf.Bytes()...))
	rateBuf.Release()

	u64 := membuf.NewWriter(engine)
	u64.WriteU64(seg.IndexDuration)
	set.Put(indexDurationTag, indexDurationTagUL, append([]byte(nil), u64.Bytes()...))
	u64.Release()

	u32 := membuf.NewWriter(engine)
	u32.WriteU32(seg.IndexSID)
	set.Put(indexSIDTag, indexSIDTagUL, append([]byte(nil), u32.Bytes()...))
	u32.Release()

	u32b := membuf.NewWriter(engine)
	u32b.WriteU32(seg.BodySID)
	set.Put(bodySIDTag, bodySIDTagUL, append([]byte(nil), u32b.Bytes()...))
	u32b.Release()

	u32c := membuf.NewWriter(engine)
	u32c.WriteU32(seg.EditUnitSize)
	set.Put(editUnitSizeTag, editUnitSizeTagUL, append([]byte(nil), u32c.Bytes()...))
	u32c.Release()

	entries := membuf.NewWriter(engine)
	entries.WriteU32(uint32(len(seg.Entries)))
	entries.WriteU32(11) // temporal(1) + keyframe(1) + flags(1) + streamOffset(8)
	for _, e := range seg.Entries {
		entries.WriteU8(uint8(e.TemporalOffset))
		entries.WriteU8(uint8(e.KeyFrameOffset))
		entries.WriteU8(e.Flags)
		entries.WriteU64(e.StreamOffset)
	}
	set.Put(entryArrayTag, entryArrayTagUL, append([]byte(nil), entries.Bytes()...))
	entries.Release()

	return set.Bytes(primer)
}

// local tags for the index table segment's scalar properties; these are
// registered with the partition's primer the same way any other
// property UL is, via the ULs below.
const (
	indexEditRateTag = 0x3F0B
	indexDurationTag = 0x3F0D
	indexSIDTag      = 0x3F06
	bodySIDTag       = 0x3F05
	editUnitSizeTag  = 0x3F04
	entryArrayTag    = 0x3F0A
)

var (
	indexEditRateTagUL = id.MustParseHexUL("060e2b34010101010401002300000000")
	indexDurationTagUL = id.MustParseHexUL("060e2b34010101010401002400000000")
	indexSIDTagUL      = id.MustParseHexUL("060e2b34010101010401002500000000")
	bodySIDTagUL       = id.MustParseHexUL("060e2b34010101010401002600000000")
	editUnitSizeTagUL  = id.MustParseHexUL("060e2b34010101010401002700000000")
	entryArrayTagUL    = id.MustParseHexUL("060e2b34010101010401002800000000")
)

// ParseIndexTableSegment decodes an index table segment from its KLV
// value bytes.
func ParseIndexTableSegment(value []byte, primer *Primer) (*IndexTableSegment, error) {
	const op = "mxf.ParseIndexTableSegment"

	set, err := ParseSet(IndexTableSegmentKey, value, primer)
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}

	seg := &IndexTableSegment{InstanceUID: set.InstanceUID}
	engine := endian.GetBigEndianEngine()

	if raw, ok := set.Get(indexEditRateTag); ok {
		r := membuf.NewReader(raw, engine)
		num, err := r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		den, err := r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		seg.IndexEditRate = id.Rational{Num: int32(num), Den: int32(den)}
	}

	if raw, ok := set.Get(indexDurationTag); ok {
		r := membuf.NewReader(raw, engine)
		seg.IndexDuration, err = r.ReadU64()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
	}

	if raw, ok := set.Get(indexSIDTag); ok {
		r := membuf.NewReader(raw, engine)
		seg.IndexSID, err = r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
	}

	if raw, ok := set.Get(bodySIDTag); ok {
		r := membuf.NewReader(raw, engine)
		seg.BodySID, err = r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
	}

	if raw, ok := set.Get(editUnitSizeTag); ok {
		r := membuf.NewReader(raw, engine)
		seg.EditUnitSize, err = r.ReadU32()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
	}

	raw, ok := set.Get(entryArrayTag)
	if !ok {
		return nil, errs.New(errs.KindFormat, op, "index table segment missing entry array")
	}

	r := membuf.NewReader(raw, engine)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	entrySize, err := r.ReadU32()
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if entrySize != 11 {
		return nil, errs.New(errs.KindFormat, op, "unexpected index entry size")
	}

	for i := uint32(0); i < count; i++ {
		temporal, err := r.ReadU8()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		keyFrame, err := r.ReadU8()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		flags, err := r.ReadU8()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		offset, err := r.ReadU64()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		seg.Append(IndexEntry{
			TemporalOffset: int8(temporal),
			KeyFrameOffset: int8(keyFrame),
			Flags:          flags,
			StreamOffset:   offset,
		})
	}

	return seg, nil
}
