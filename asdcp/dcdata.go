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

// DataWriter wraps essence.Writer for generic DCData essence: opaque
// binary payloads carried alongside picture/sound (e.g. ancillary
// closed-caption or accessibility data), or — when opened with
// OpenPHDRWriter — ancillary picture-header (PHDR) passthrough items
// (spec.md §4's supplemented PHDR feature; spec.md §1 excludes only the
// phdr-unwrap CLI, not PHDR container support itself). Each frame is
// compressed under Config.Compression, matching how a TimedText ancillary
// resource is stored.
type DataWriter struct {
	inner *essence.Writer
	codec compress.Codec
}

// OpenDataWriter opens a generic DCData session.
func OpenDataWriter(path string, info essence.WriterInfo, dataEssenceCoding id.UL, source *rng.RNG, opts ...Option) (*DataWriter, error) {
	return openDataWriter(path, info, KindDCData, dataEssenceCoding, source, opts...)
}

// OpenPHDRWriter opens a PHDR-flavored DCData session: ancillary picture
// headers carried as a parallel data track alongside the picture essence.
func OpenPHDRWriter(path string, info essence.WriterInfo, dataEssenceCoding id.UL, source *rng.RNG, opts ...Option) (*DataWriter, error) {
	return openDataWriter(path, info, KindPHDR, dataEssenceCoding, source, opts...)
}

// OpenATMOSWriter opens a Dolby ATMOS DCData session: the original
// asdcp-info tool classifies ATMOS as its own DCData essence subtype
// (ESS_DCDATA_DOLBY_ATMOS) distinct from plain DCData and PHDR, so it
// gets its own Kind/UL row even though it shares DataWriter's generic
// byte-payload framing.
func OpenATMOSWriter(path string, info essence.WriterInfo, dataEssenceCoding id.UL, source *rng.RNG, opts ...Option) (*DataWriter, error) {
	return openDataWriter(path, info, KindATMOS, dataEssenceCoding, source, opts...)
}

func openDataWriter(path string, info essence.WriterInfo, kind Kind, dataEssenceCoding id.UL, source *rng.RNG, opts ...Option) (*DataWriter, error) {
	const op = "asdcp.openDataWriter"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	codec, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	opPattern, essenceContainer, codecUL := Labels(kind, cfg.LabelSet)
	if dataEssenceCoding.IsZero() {
		dataEssenceCoding = codecUL
	}

	descUID, err := id.NewUUID(source)
	if err != nil {
		return nil, errs.Wrap(errs.KindAlloc, op, err)
	}

	desc := descriptor.DataEssenceDescriptor{
		FileDescriptor: descriptor.FileDescriptor{
			InstanceUID:      descUID,
			EssenceContainer: essenceContainer,
			Codec:            codecUL,
		},
		DataEssenceCoding: dataEssenceCoding,
	}

	inner, err := essence.OpenWrite(path, info, desc, essenceContainer, opPattern, source, nil, cfg.WriterOptions...)
	if err != nil {
		return nil, err
	}

	return &DataWriter{inner: inner, codec: codec}, nil
}

// WriteFrame compresses data under the writer's configured Codec and
// writes it as the next frame.
func (w *DataWriter) WriteFrame(data []byte, encryptor *envelope.Encryptor) error {
	const op = "asdcp.DataWriter.WriteFrame"

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
func (w *DataWriter) Finalize() error { return w.inner.Finalize() }

// Close releases the underlying file handle.
func (w *DataWriter) Close() error { return w.inner.Close() }

// Duration returns the number of frames written so far.
func (w *DataWriter) Duration() uint64 { return w.inner.Duration() }

// DataReader wraps essence.Reader for generic DCData/PHDR essence.
type DataReader struct {
	inner *essence.Reader
	codec compress.Codec
}

// OpenDataReader opens path for reading DCData/PHDR essence.
func OpenDataReader(path string, essenceContainerKey id.UL, opts ...Option) (*DataReader, error) {
	const op = "asdcp.OpenDataReader"

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

	return &DataReader{inner: inner, codec: codec}, nil
}

// ReadFrame reads frame n and decompresses it under the reader's
// configured Codec.
func (r *DataReader) ReadFrame(n uint64, buffer *essence.FrameBuffer, decryptor *envelope.Decryptor) ([]byte, error) {
	if err := r.inner.ReadFrame(n, buffer, decryptor); err != nil {
		return nil, err
	}

	return r.codec.Decompress(buffer.Bytes()[:buffer.SourceLength])
}

// Descriptor decodes the header's DataEssenceDescriptor.
func (r *DataReader) Descriptor() (descriptor.DataEssenceDescriptor, error) {
	return descriptor.ParseDataEssenceDescriptor(setValue(r.inner.Descriptor(), r.inner.Primer()), r.inner.Primer())
}

// Duration returns the container duration.
func (r *DataReader) Duration() uint64 { return r.inner.Duration() }

// Close releases the underlying file handle.
func (r *DataReader) Close() error { return r.inner.Close() }
