package asdcp

import (
	"github.com/cinecert/asdcplib-sub002/compress"
	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/options"
	"github.com/cinecert/asdcplib-sub002/rng"
)

// timedTextState tracks spec.md §4.9's ordering tie-break for TimedText
// sessions: exactly one WriteTimedTextResource must precede any
// WriteAncillaryResource call.
type timedTextState uint8

const (
	timedTextNoResource timedTextState = iota
	timedTextResourceWritten
)

// TimedTextWriter wraps essence.Writer for TimedText essence: frame 0
// is always the subtitle/caption XML resource itself; subsequent frames
// are ancillary resources (fonts, PNG images) the XML references,
// optionally compressed per Config.Compression. The resource payload is
// carried as an opaque byte payload (spec.md's Non-goals exclude XML
// DOM/SAX parsing); this package never inspects its contents.
type TimedTextWriter struct {
	inner *essence.Writer
	state timedTextState
	codec compress.Codec
}

// OpenTimedTextWriter builds a TimedTextDescriptor from resourceID and
// namespaceURI and opens the underlying essence.Writer with the label
// set's TimedText ULs.
func OpenTimedTextWriter(path string, info essence.WriterInfo, resourceID id.UUID, namespaceURI string, source *rng.RNG, opts ...Option) (*TimedTextWriter, error) {
	const op = "asdcp.OpenTimedTextWriter"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	codec, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	opPattern, essenceContainer, codecUL := Labels(KindTimedText, cfg.LabelSet)

	descUID, err := id.NewUUID(source)
	if err != nil {
		return nil, errs.Wrap(errs.KindAlloc, op, err)
	}

	desc := descriptor.TimedTextDescriptor{
		FileDescriptor: descriptor.FileDescriptor{
			InstanceUID:      descUID,
			EssenceContainer: essenceContainer,
			Codec:            codecUL,
		},
		ResourceID:   resourceID,
		NamespaceURI: namespaceURI,
	}

	inner, err := essence.OpenWrite(path, info, desc, essenceContainer, opPattern, source, nil, cfg.WriterOptions...)
	if err != nil {
		return nil, err
	}

	return &TimedTextWriter{inner: inner, codec: codec}, nil
}

// WriteTimedTextResource writes the subtitle/caption XML document as
// frame 0. Must be called exactly once, before any
// WriteAncillaryResource call.
func (w *TimedTextWriter) WriteTimedTextResource(xml []byte, encryptor *envelope.Encryptor) error {
	const op = "asdcp.TimedTextWriter.WriteTimedTextResource"

	if w.state != timedTextNoResource {
		return errs.New(errs.KindState, op, "the timed-text resource has already been written")
	}

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	buf.SetBytes(xml)

	if err := w.inner.WriteFrame(buf, encryptor); err != nil {
		return err
	}

	w.state = timedTextResourceWritten

	return nil
}

// WriteAncillaryResource compresses data under the writer's configured
// Codec and writes it as the next frame. Requires
// WriteTimedTextResource to have already been called.
func (w *TimedTextWriter) WriteAncillaryResource(data []byte, encryptor *envelope.Encryptor) error {
	const op = "asdcp.TimedTextWriter.WriteAncillaryResource"

	if w.state != timedTextResourceWritten {
		return errs.New(errs.KindState, op, "write_timed_text_resource must precede any ancillary resource")
	}

	compressed, err := w.codec.Compress(data)
	if err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	buf.SetBytes(compressed)

	return w.inner.WriteFrame(buf, encryptor)
}

// Finalize closes out the session per spec.md §4.9.
func (w *TimedTextWriter) Finalize() error { return w.inner.Finalize() }

// Close releases the underlying file handle.
func (w *TimedTextWriter) Close() error { return w.inner.Close() }

// Duration returns the number of frames written so far (the resource
// frame plus every ancillary resource).
func (w *TimedTextWriter) Duration() uint64 { return w.inner.Duration() }

// TimedTextReader wraps essence.Reader for TimedText essence.
type TimedTextReader struct {
	inner *essence.Reader
	codec compress.Codec
}

// OpenTimedTextReader opens path for reading TimedText essence.
func OpenTimedTextReader(path string, essenceContainerKey id.UL, opts ...Option) (*TimedTextReader, error) {
	const op = "asdcp.OpenTimedTextReader"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	codec, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	inner, err := essence.OpenRead(path, essenceContainerKey, cfg.ReaderOptions...)
	if err != nil {
		return nil, err
	}

	return &TimedTextReader{inner: inner, codec: codec}, nil
}

// ReadTimedTextResource reads frame 0, the subtitle/caption XML
// resource, uncompressed (the resource itself is never compressed,
// only the ancillary resources that follow it).
func (r *TimedTextReader) ReadTimedTextResource(buffer *essence.FrameBuffer, decryptor *envelope.Decryptor) error {
	return r.inner.ReadFrame(0, buffer, decryptor)
}

// ReadAncillaryResource reads frame n (n >= 1) and decompresses it
// under the reader's configured Codec.
func (r *TimedTextReader) ReadAncillaryResource(n uint64, buffer *essence.FrameBuffer, decryptor *envelope.Decryptor) ([]byte, error) {
	const op = "asdcp.TimedTextReader.ReadAncillaryResource"

	if n == 0 {
		return nil, errs.New(errs.KindParam, op, "frame 0 is the timed-text resource, not an ancillary resource")
	}

	if err := r.inner.ReadFrame(n, buffer, decryptor); err != nil {
		return nil, err
	}

	return r.codec.Decompress(buffer.Bytes()[:buffer.SourceLength])
}

// Descriptor decodes the header's TimedTextDescriptor.
func (r *TimedTextReader) Descriptor() (descriptor.TimedTextDescriptor, error) {
	return descriptor.ParseTimedTextDescriptor(setValue(r.inner.Descriptor(), r.inner.Primer()), r.inner.Primer())
}

// Duration returns the container duration.
func (r *TimedTextReader) Duration() uint64 { return r.inner.Duration() }

// Close releases the underlying file handle.
func (r *TimedTextReader) Close() error { return r.inner.Close() }
