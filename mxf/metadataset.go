package mxf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/klv"
	"github.com/cinecert/asdcplib-sub002/membuf"
)

// instanceUIDUL is the standard local-tag-0x3C0A property: every
// metadata set's mandatory InstanceUID, per spec.md §3.
var instanceUIDUL = id.MustParseHexUL("060e2b34010101010401060102000000")

// Tuple is one (local tag, value bytes) pair inside a metadata set,
// together with the UL that tag must resolve to through the
// partition's primer (spec.md §3: every property tag appearing in a
// set must resolve through the primer).
type Tuple struct {
	Tag   uint16
	UL    id.UL
	Value []byte
}

// Set is a generic metadata set: a set-key UL and an ordered sequence
// of local tuples, one of which (tag 0x3C0A) is the set's InstanceUID.
// Descriptor and object-graph types build and consume Sets rather than
// encoding their own KLV framing.
type Set struct {
	Key        id.UL
	InstanceUID id.UUID
	Tuples     []Tuple
}

// NewSet returns a Set with the given key and InstanceUID, ready to
// accept further tuples via Put.
func NewSet(key id.UL, instanceUID id.UUID) *Set {
	return &Set{Key: key, InstanceUID: instanceUID}
}

// Put appends or replaces the tuple for tag. ul is the property's
// canonical identifier; Bytes registers it with the partition's primer
// so tag resolves correctly when the primer pack is serialized.
func (s *Set) Put(tag uint16, ul id.UL, value []byte) {
	for i := range s.Tuples {
		if s.Tuples[i].Tag == tag {
			s.Tuples[i].UL = ul
			s.Tuples[i].Value = value
			return
		}
	}

	s.Tuples = append(s.Tuples, Tuple{Tag: tag, UL: ul, Value: value})
}

// Get returns the value for tag, if present.
func (s *Set) Get(tag uint16) ([]byte, bool) {
	for _, t := range s.Tuples {
		if t.Tag == tag {
			return t.Value, true
		}
	}

	return nil, false
}

// Bytes serializes the set as a complete KLV triple, registering every
// referenced property UL (including InstanceUID) with primer so the
// tags resolve when the partition's primer pack is written.
func (s *Set) Bytes(primer *Primer) []byte {
	engine := endian.GetBigEndianEngine()
	w := membuf.NewWriter(engine)
	defer w.Release()

	instanceTag := primer.AllocateTag(instanceUIDUL)
	writeTuple(w, instanceTag, s.InstanceUID.Bytes())

	for _, t := range s.Tuples {
		primer.Register(t.Tag, t.UL)
		writeTuple(w, t.Tag, t.Value)
	}

	value := append([]byte(nil), w.Bytes()...)

	return encodeTriple(s.Key, value)
}

func writeTuple(w *membuf.Writer, tag uint16, value []byte) {
	w.WriteU16(tag)
	w.WriteU16(uint16(len(value)))
	w.WriteRaw(value)
}

// ParseSet decodes a metadata set's value bytes (with key and length
// already consumed by the caller) into a Set, resolving the mandatory
// InstanceUID tuple via primer.
func ParseSet(key id.UL, value []byte, primer *Primer) (*Set, error) {
	const op = "mxf.ParseSet"

	r := membuf.NewReader(value, endian.GetBigEndianEngine())
	s := &Set{Key: key}

	var sawInstanceUID bool

	for r.Len() > 0 {
		tag, err := r.ReadU16()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}

		length, err := r.ReadU16()
		if err != nil {
			return nil, errs.Wrap(errs.KindFormat, op, err)
		}

		raw, err := r.ReadRaw(int(length))
		if err != nil {
			return nil, errs.Wrap(errs.KindSmallBuf, op, err)
		}

		ul, ok := primer.Resolve(tag)
		if ok && ul.Equal(instanceUIDUL) {
			uuid, err := id.ParseUUID(raw)
			if err != nil {
				return nil, errs.Wrap(errs.KindFormat, op, err)
			}
			s.InstanceUID = uuid
			sawInstanceUID = true
			continue
		}

		s.Tuples = append(s.Tuples, Tuple{Tag: tag, UL: ul, Value: append([]byte(nil), raw...)})
	}

	if !sawInstanceUID {
		return nil, errs.New(errs.KindFormat, op, "metadata set missing InstanceUID tuple")
	}

	return s, nil
}

// ReadSetValue checks that value, one KLV's already-read value region,
// is exactly h.Length bytes long and returns it unchanged; a length
// mismatch fails with KindFormat.
func ReadSetValue(h klv.Header, value []byte) ([]byte, error) {
	const op = "mxf.ReadSetValue"
	if uint64(len(value)) != h.Length {
		return nil, errs.New(errs.KindFormat, op, "value length does not match header")
	}

	return value, nil
}
