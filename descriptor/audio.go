package descriptor

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/membuf"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// WaveAudioDescriptorKey is the SMPTE 377 WaveAudioDescriptor set key.
var WaveAudioDescriptorKey = id.MustParseHexUL("060e2b34025301010d01010101014800")

const (
	tagChannelCount      = 0x3D07
	tagQuantizationBits  = 0x3D01
	tagBlockAlign        = 0x3D0A
	tagAvgBytesPerSecond = 0x3D09
)

var (
	tagChannelCountUL      = id.MustParseHexUL("060e2b34010101010401000600000000")
	tagQuantizationBitsUL  = id.MustParseHexUL("060e2b34010101010401000700000000")
	tagBlockAlignUL        = id.MustParseHexUL("060e2b34010101010401000800000000")
	tagAvgBytesPerSecondUL = id.MustParseHexUL("060e2b34010101010401000900000000")
)

// WaveAudioDescriptor describes PCM audio essence, as produced by
// wavparse.Reader.
type WaveAudioDescriptor struct {
	FileDescriptor
	ChannelCount     uint32
	QuantizationBits uint32
	BlockAlign       uint16
	AvgBytesPerSec   uint32
}

// ToSet serializes wd as a complete WaveAudioDescriptor set.
func (wd WaveAudioDescriptor) ToSet() *mxf.Set {
	s := mxf.NewSet(WaveAudioDescriptorKey, wd.InstanceUID)
	putFileDescriptorFields(s, wd.FileDescriptor)

	engine := endian.GetBigEndianEngine()

	w := membuf.NewWriter(engine)
	w.WriteU32(wd.ChannelCount)
	s.Put(tagChannelCount, tagChannelCountUL, append([]byte(nil), w.Bytes()...))
	w.Release()

	w2 := membuf.NewWriter(engine)
	w2.WriteU32(wd.QuantizationBits)
	s.Put(tagQuantizationBits, tagQuantizationBitsUL, append([]byte(nil), w2.Bytes()...))
	w2.Release()

	w3 := membuf.NewWriter(engine)
	w3.WriteU16(wd.BlockAlign)
	s.Put(tagBlockAlign, tagBlockAlignUL, append([]byte(nil), w3.Bytes()...))
	w3.Release()

	w4 := membuf.NewWriter(engine)
	w4.WriteU32(wd.AvgBytesPerSec)
	s.Put(tagAvgBytesPerSecond, tagAvgBytesPerSecondUL, append([]byte(nil), w4.Bytes()...))
	w4.Release()

	return s
}

// ParseWaveAudioDescriptor decodes a WaveAudioDescriptor set.
func ParseWaveAudioDescriptor(value []byte, primer *mxf.Primer) (WaveAudioDescriptor, error) {
	const op = "descriptor.ParseWaveAudioDescriptor"

	set, err := mxf.ParseSet(WaveAudioDescriptorKey, value, primer)
	if err != nil {
		return WaveAudioDescriptor{}, err
	}

	fd, err := readFileDescriptorFields(set)
	if err != nil {
		return WaveAudioDescriptor{}, err
	}
	wd := WaveAudioDescriptor{FileDescriptor: fd}

	engine := endian.GetBigEndianEngine()

	if raw, ok := set.Get(tagChannelCount); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return wd, errs.Wrap(errs.KindFormat, op, err)
		}
		wd.ChannelCount = v
	}

	if raw, ok := set.Get(tagQuantizationBits); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return wd, errs.Wrap(errs.KindFormat, op, err)
		}
		wd.QuantizationBits = v
	}

	if raw, ok := set.Get(tagBlockAlign); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU16()
		if err != nil {
			return wd, errs.Wrap(errs.KindFormat, op, err)
		}
		wd.BlockAlign = v
	}

	if raw, ok := set.Get(tagAvgBytesPerSecond); ok {
		r := membuf.NewReader(raw, engine)
		v, err := r.ReadU32()
		if err != nil {
			return wd, errs.Wrap(errs.KindFormat, op, err)
		}
		wd.AvgBytesPerSec = v
	}

	return wd, nil
}
