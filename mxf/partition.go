package mxf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
)

// HeaderPartitionKey, BodyPartitionKey, and FooterPartitionKey are the
// three partition pack set keys distinguished by the low byte of the
// SMPTE 377 partition pack UL.
var (
	HeaderPartitionKey = id.MustParseHexUL("060e2b34020501010d01020101020400")
	BodyPartitionKey   = id.MustParseHexUL("060e2b34020501010d01020101030400")
	FooterPartitionKey = id.MustParseHexUL("060e2b34020501010d01020101040400")
)

// OPAtom and OPA1a identify the two operational patterns spec.md §4.7
// distinguishes: OP-Atom for AS-DCP, OP-1a for AS-02.
var (
	OPAtom = id.MustParseHexUL("060e2b34040101010d01020110000000")
	OP1a   = id.MustParseHexUL("060e2b34040101010d01020101000000")
)

// PartitionPack is the fixed prefix written at the start of every
// partition: header, body, and footer alike, per spec.md §3.
type PartitionPack struct {
	Key                   id.UL
	MajorVersion          uint16
	MinorVersion          uint16
	KAGSize               uint32
	ThisPartition         uint64
	PreviousPartition     uint64
	FooterPartition       uint64
	HeaderByteCount       uint64
	IndexByteCount        uint64
	IndexSID              uint32
	BodyOffset            uint64
	BodySID               uint32
	OperationalPattern    id.UL
	EssenceContainers     []id.UL
}

// Bytes serializes the partition pack as a complete KLV triple.
func (p *PartitionPack) Bytes() []byte {
	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	defer w.Release()

	w.WriteU16(p.MajorVersion)
	w.WriteU16(p.MinorVersion)
	w.WriteU32(p.KAGSize)
	w.WriteU64(p.ThisPartition)
	w.WriteU64(p.PreviousPartition)
	w.WriteU64(p.FooterPartition)
	w.WriteU64(p.HeaderByteCount)
	w.WriteU64(p.IndexByteCount)
	w.WriteU32(p.IndexSID)
	w.WriteU64(p.BodyOffset)
	w.WriteU32(p.BodySID)
	w.WriteUL(p.OperationalPattern)

	w.WriteU32(uint32(len(p.EssenceContainers)))
	w.WriteU32(id.ULSize)
	for _, ul := range p.EssenceContainers {
		w.WriteUL(ul)
	}

	value := append([]byte(nil), w.Bytes()...)

	return encodeTriple(p.Key, value)
}

// ParsePartitionPack decodes a partition pack's value bytes (key and
// length already consumed by the caller).
func ParsePartitionPack(key id.UL, value []byte) (*PartitionPack, error) {
	const op = "mxf.ParsePartitionPack"

	r := membuf.NewReader(value, endian.GetBigEndianEngine())
	p := &PartitionPack{Key: key}

	var err error
	if p.MajorVersion, err = r.ReadU16(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.MinorVersion, err = r.ReadU16(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.KAGSize, err = r.ReadU32(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.ThisPartition, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.PreviousPartition, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.FooterPartition, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.HeaderByteCount, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.IndexByteCount, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.IndexSID, err = r.ReadU32(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.BodyOffset, err = r.ReadU64(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.BodySID, err = r.ReadU32(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if p.OperationalPattern, err = r.ReadUL(); err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	entrySize, err := r.ReadU32()
	if err != nil {
		return nil, errs.Wrap(errs.KindFormat, op, err)
	}
	if entrySize != id.ULSize {
		return nil, errs.New(errs.KindFormat, op, "unexpected essence container entry size")
	}

	p.EssenceContainers = make([]id.UL, 0, count)
	for i := uint32(0); i < count; i++ {
		ul, err := r.ReadUL()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}
		p.EssenceContainers = append(p.EssenceContainers, ul)
	}

	return p, nil
}

// IsHeader, IsBody, and IsFooter classify a partition pack key.
func (p *PartitionPack) IsHeader() bool { return p.Key.Equal(HeaderPartitionKey) }
func (p *PartitionPack) IsBody() bool   { return p.Key.Equal(BodyPartitionKey) }
func (p *PartitionPack) IsFooter() bool { return p.Key.Equal(FooterPartitionKey) }
