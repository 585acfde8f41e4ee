package descriptor

import (
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// Set keys for the non-picture, non-audio essence descriptors spec.md's
// component table names.
var (
	TimedTextDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101015e00")
	DataEssenceDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101016000")
)

const (
	tagResourceID    = 0x5001
	tagNamespaceURI  = 0x5002
	tagDataEssenceCoding = 0x6001
)

var (
	tagResourceIDUL        = id.MustParseHexUL("060e2b34010101010401002000000000")
	tagNamespaceURIUL      = id.MustParseHexUL("060e2b34010101010401002100000000")
	tagDataEssenceCodingUL = id.MustParseHexUL("060e2b34010101010401002200000000")
)

// TimedTextDescriptor describes a TimedText (subtitle/caption) essence
// stream: the XML resource's identity and namespace.
type TimedTextDescriptor struct {
	FileDescriptor
	ResourceID   id.UUID
	NamespaceURI string
}

// ToSet serializes td as a complete TimedTextDescriptor set.
func (td TimedTextDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(TimedTextDescriptorKey, td.InstanceUID)
	putFileDescriptorFields(s, td.FileDescriptor)

	s.Put(tagResourceID, tagResourceIDUL, td.ResourceID.Bytes())
	s.Put(tagNamespaceURI, tagNamespaceURIUL, []byte(td.NamespaceURI))

	return s
}

// ParseTimedTextDescriptor decodes a TimedTextDescriptor set.
func ParseTimedTextDescriptor(value []byte, primer *mxf.Primer) (TimedTextDescriptor, error) {
	const op = "descriptor.ParseTimedTextDescriptor"

	set, err := mxf.ParseSet(TimedTextDescriptorKey, value, primer)
	if err != nil {
		return TimedTextDescriptor{}, err
	}

	fd, err := readFileDescriptorFields(set)
	if err != nil {
		return TimedTextDescriptor{}, err
	}
	td := TimedTextDescriptor{FileDescriptor: fd}

	if raw, ok := set.Get(tagResourceID); ok {
		uuid, err := id.ParseUUID(raw)
		if err != nil {
			return td, errs.Wrap(errs.KindFormat, op, err)
		}
		td.ResourceID = uuid
	}

	if raw, ok := set.Get(tagNamespaceURI); ok {
		td.NamespaceURI = string(raw)
	}

	return td, nil
}

// DataEssenceDescriptor describes generic DCData essence (auxiliary
// binary payloads carried alongside picture/sound, e.g. ancillary
// closed-caption or accessibility data).
type DataEssenceDescriptor struct {
	FileDescriptor
	DataEssenceCoding id.UL
}

// ToSet serializes dd as a complete DataEssenceDescriptor set.
func (dd DataEssenceDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(DataEssenceDescriptorKey, dd.InstanceUID)
	putFileDescriptorFields(s, dd.FileDescriptor)
	s.Put(tagDataEssenceCoding, tagDataEssenceCodingUL, dd.DataEssenceCoding.Bytes())

	return s
}

// ParseDataEssenceDescriptor decodes a DataEssenceDescriptor set.
func ParseDataEssenceDescriptor(value []byte, primer *mxf.Primer) (DataEssenceDescriptor, error) {
	set, err := mxf.ParseSet(DataEssenceDescriptorKey, value, primer)
	if err != nil {
		return DataEssenceDescriptor{}, err
	}

	fd, err := readFileDescriptorFields(set)
	if err != nil {
		return DataEssenceDescriptor{}, err
	}
	dd := DataEssenceDescriptor{FileDescriptor: fd}

	if raw, ok := set.Get(tagDataEssenceCoding); ok {
		ul, err := id.ParseUL(raw)
		if err != nil {
			return dd, errs.Wrap(errs.KindFormat, "descriptor.ParseDataEssenceDescriptor", err)
		}
		dd.DataEssenceCoding = ul
	}

	return dd, nil
}
