package asdcp

import (
	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/options"
	"github.com/cinecert/asdcplib-sub002/rng"
	"github.com/cinecert/asdcplib-sub002/wavparse"
)

// ChannelLabel names one audio channel's SMPTE 377-4 MCA soundfield
// assignment (e.g. "chL", "chR", "chC", "LtRt"), passed by the caller
// per spec.md §4's supplemented MCA labeling feature — the codestream
// itself carries no channel-identity metadata, unlike JP2K/JXS.
type ChannelLabel struct {
	TagSymbol string
	LinkID    id.UUID
}

// AudioWriter wraps essence.Writer for PCM WAV essence: wavparse.Reader
// supplies the fmt-chunk-derived WaveAudioDescriptor fields, and one
// MCALabelSubDescriptor is attached per channel label the caller
// supplies.
type AudioWriter struct {
	inner *essence.Writer
}

// OpenAudioWriter parses wav's RIFF/WAVE header (spec.md §4.6), builds a
// WaveAudioDescriptor from its fmt chunk, attaches one
// MCALabelSubDescriptor per entry in labels, and opens the underlying
// essence.Writer with the label set's Audio ULs. samplesPerEditUnit and
// source are forwarded to wavparse.NewReader and descriptor/sub-descriptor
// identifier generation respectively.
func OpenAudioWriter(path string, info essence.WriterInfo, wav []byte, samplesPerEditUnit int, labels []ChannelLabel, source *rng.RNG, opts ...Option) (*AudioWriter, *wavparse.Reader, error) {
	const op = "asdcp.OpenAudioWriter"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, nil, errs.Wrap(errs.KindParam, op, err)
	}

	wr, err := wavparse.NewReader(wav, samplesPerEditUnit)
	if err != nil {
		return nil, nil, err
	}
	format := wr.Format()

	opPattern, essenceContainer, codecUL := Labels(KindAudioPCM, cfg.LabelSet)

	descUID, err := id.NewUUID(source)
	if err != nil {
		return nil, nil, errs.Wrap(errs.KindAlloc, op, err)
	}

	bytesPerSample := int(format.BitsPerSample) / 8
	desc := descriptor.WaveAudioDescriptor{
		FileDescriptor: descriptor.FileDescriptor{
			InstanceUID:      descUID,
			SampleRate:       id.NewRational(int32(format.SampleRate), 1),
			EssenceContainer: essenceContainer,
			Codec:            codecUL,
		},
		ChannelCount:     uint32(format.ChannelCount),
		QuantizationBits: uint32(format.BitsPerSample),
		BlockAlign:       uint16(int(format.ChannelCount) * bytesPerSample),
		AvgBytesPerSec:   format.BytesPerSec,
	}

	var subDescs []essence.Descriptor
	for i, label := range labels {
		subUID, err := id.NewUUID(source)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindAlloc, op, err)
		}
		sub := descriptor.MCALabelSubDescriptor{
			InstanceUID:          subUID,
			MCALabelDictionaryID: codecUL,
			MCALinkID:            label.LinkID,
			MCATagSymbol:         label.TagSymbol,
			MCAChannelID:         uint32(i),
		}
		subDescs = append(subDescs, sub)
	}

	inner, err := essence.OpenWrite(path, info, desc, essenceContainer, opPattern, source, subDescs, cfg.WriterOptions...)
	if err != nil {
		return nil, nil, err
	}

	return &AudioWriter{inner: inner}, wr, nil
}

// WriteFrame writes one PCM frame (samples_per_edit_unit × channels ×
// bytes_per_sample bytes, per spec.md §4.6's frame-size formula).
func (w *AudioWriter) WriteFrame(buffer *essence.FrameBuffer, encryptor *envelope.Encryptor) error {
	return w.inner.WriteFrame(buffer, encryptor)
}

// Finalize closes out the session per spec.md §4.9.
func (w *AudioWriter) Finalize() error { return w.inner.Finalize() }

// Close releases the underlying file handle.
func (w *AudioWriter) Close() error { return w.inner.Close() }

// Duration returns the number of frames written so far.
func (w *AudioWriter) Duration() uint64 { return w.inner.Duration() }

// AudioReader wraps essence.Reader for PCM WAV essence.
type AudioReader struct {
	inner *essence.Reader
}

// OpenAudioReader opens path for reading PCM audio essence.
func OpenAudioReader(path string, essenceContainerKey id.UL, opts ...Option) (*AudioReader, error) {
	const op = "asdcp.OpenAudioReader"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	inner, err := essence.OpenRead(path, essenceContainerKey, cfg.ReaderOptions...)
	if err != nil {
		return nil, err
	}

	return &AudioReader{inner: inner}, nil
}

// ReadFrame reads frame n's PCM samples.
func (r *AudioReader) ReadFrame(n uint64, buffer *essence.FrameBuffer, decryptor *envelope.Decryptor) error {
	return r.inner.ReadFrame(n, buffer, decryptor)
}

// Descriptor decodes the header's WaveAudioDescriptor.
func (r *AudioReader) Descriptor() (descriptor.WaveAudioDescriptor, error) {
	return descriptor.ParseWaveAudioDescriptor(setValue(r.inner.Descriptor(), r.inner.Primer()), r.inner.Primer())
}

// ChannelLabels decodes the MCALabelSubDescriptor set linked from the
// main descriptor for each channel, in MCAChannelID order.
func (r *AudioReader) ChannelLabels() ([]descriptor.MCALabelSubDescriptor, error) {
	const op = "asdcp.AudioReader.ChannelLabels"

	refs, ok, err := descriptor.GetSubDescriptorRefs(r.inner.Descriptor())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	out := make([]descriptor.MCALabelSubDescriptor, 0, len(refs))
	for _, ref := range refs {
		sdSet, ok := r.inner.Set(ref)
		if !ok {
			return nil, errs.New(errs.KindFormat, op, "sub-descriptor reference does not resolve")
		}
		md, err := descriptor.ParseMCALabelSubDescriptor(setValue(sdSet, r.inner.Primer()), r.inner.Primer())
		if err != nil {
			return nil, err
		}
		out = append(out, md)
	}

	return out, nil
}

// Duration returns the container duration.
func (r *AudioReader) Duration() uint64 { return r.inner.Duration() }

// Close releases the underlying file handle.
func (r *AudioReader) Close() error { return r.inner.Close() }
