package asdcp

import (
	"encoding/binary"

	"github.com/cinecert/asdcplib-sub002/codestream/jp2k"
	"github.com/cinecert/asdcplib-sub002/codestream/jxs"
	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/digest"
	"github.com/cinecert/asdcplib-sub002/internal/options"
	"github.com/cinecert/asdcplib-sub002/rng"
)

// jp2kShapeDigest hashes the codestream parameters that must stay
// constant across every frame of a pedantic sequence — everything
// jp2k.Metadata carries except PlaintextOffset, which legitimately
// varies frame to frame with header length.
func jp2kShapeDigest(md jp2k.Metadata) uint64 {
	var buf [20]byte
	binary.BigEndian.PutUint32(buf[0:4], md.Width)
	binary.BigEndian.PutUint32(buf[4:8], md.Height)
	binary.BigEndian.PutUint16(buf[8:10], md.ComponentCount)
	buf[10] = md.ComponentBitDepth
	buf[11] = md.SubsamplingX
	buf[12] = md.SubsamplingY
	buf[13] = md.ProgressionOrder
	binary.BigEndian.PutUint16(buf[14:16], md.Layers)
	buf[16] = md.DecompositionLevels
	buf[17] = md.CodeblockWidth
	buf[18] = md.CodeblockHeight
	buf[19] = md.Transformation
	return digest.Sum64(buf[:])
}

// jxsShapeDigest is jp2kShapeDigest's JPEG-XS counterpart.
func jxsShapeDigest(md jxs.Metadata) uint64 {
	buf := make([]byte, 0, 16+len(md.BitDepth)+len(md.SubsamplingH)+len(md.SubsamplingV))
	var head [10]byte
	binary.BigEndian.PutUint16(head[0:2], md.Width)
	binary.BigEndian.PutUint16(head[2:4], md.Height)
	binary.BigEndian.PutUint16(head[4:6], md.SliceHeight)
	head[6] = md.Profile
	head[7] = md.Level
	head[8] = md.ComponentCount
	head[9] = md.Ng
	buf = append(buf, head[:]...)
	buf = append(buf, md.Ss, md.Nly)
	buf = append(buf, md.BitDepth...)
	buf = append(buf, md.SubsamplingH...)
	buf = append(buf, md.SubsamplingV...)
	return digest.Sum64(buf)
}

// PictureCodec selects which marker walker a PictureWriter validates
// frames against: JPEG-2000 (spec.md §4.4) or JPEG-XS (spec.md §4.5).
type PictureCodec uint8

const (
	PictureCodecJP2K PictureCodec = iota
	PictureCodecJPEGXS
)

// PictureWriter wraps essence.Writer for JP2K/JPEG-XS picture essence:
// the first frame's codestream is walked to build a CDCIEssenceDescriptor
// plus the matching coding-parameter sub-descriptor, then every
// subsequent frame is written as-is (no recompression — spec.md's
// Non-goals). Every frame is re-walked in WriteFrame to derive its own
// PlaintextOffset, so an encryptor only ever ciphers the compressed
// picture data and never the codestream header (spec.md §4.2/§4.4/§4.5).
// With WithWriterPedantic, that same re-walk cross-checks every frame's
// codestream parameters against the first frame's.
type PictureWriter struct {
	codec       PictureCodec
	inner       *essence.Writer
	shapeDigest uint64
}

// OpenPictureWriter validates the first frame's codestream header
// (SOC/SIZ/COD/QCD for JP2K, SOC/PIH/CDT for JPEG-XS), derives the
// descriptor and sub-descriptor from it, and opens the underlying
// essence.Writer with the label set's Picture ULs.
func OpenPictureWriter(path string, codec PictureCodec, info essence.WriterInfo, firstFrame []byte, source *rng.RNG, opts ...Option) (*PictureWriter, error) {
	const op = "asdcp.OpenPictureWriter"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	kind := KindPictureJP2K
	if codec == PictureCodecJPEGXS {
		kind = KindPictureJPEGXS
	}
	opPattern, essenceContainer, codecUL := Labels(kind, cfg.LabelSet)

	descUID, err := id.NewUUID(source)
	if err != nil {
		return nil, errs.Wrap(errs.KindAlloc, op, err)
	}
	subUID, err := id.NewUUID(source)
	if err != nil {
		return nil, errs.Wrap(errs.KindAlloc, op, err)
	}

	var desc descriptor.CDCIEssenceDescriptor
	var subDescs []essence.Descriptor
	var shapeDigest uint64

	switch codec {
	case PictureCodecJP2K:
		md, err := jp2k.Walk(firstFrame)
		if err != nil {
			return nil, err
		}
		shapeDigest = jp2kShapeDigest(md)
		desc = descriptor.CDCIEssenceDescriptor{
			PictureEssenceDescriptor: descriptor.PictureEssenceDescriptor{
				FileDescriptor: descriptor.FileDescriptor{
					InstanceUID:      descUID,
					EssenceContainer: essenceContainer,
					Codec:            codecUL,
				},
				StoredWidth:          md.Width,
				StoredHeight:         md.Height,
				AspectRatio:          id.NewRational(int32(md.Width), int32(md.Height)),
				PictureEssenceCoding: codecUL,
			},
			ComponentDepth:        uint32(md.ComponentBitDepth),
			HorizontalSubsampling: uint32(md.SubsamplingX),
			VerticalSubsampling:   uint32(md.SubsamplingY),
		}
		sub := descriptor.JPEG2000SubDescriptorFromMetadata(subUID, md)
		subDescs = append(subDescs, sub)

	case PictureCodecJPEGXS:
		md, err := jxs.Walk(firstFrame)
		if err != nil {
			return nil, err
		}
		shapeDigest = jxsShapeDigest(md)
		var depth, subH, subV uint32
		if len(md.BitDepth) > 0 {
			depth = uint32(md.BitDepth[0])
		}
		if len(md.SubsamplingH) > 0 {
			subH = uint32(md.SubsamplingH[0])
		}
		if len(md.SubsamplingV) > 0 {
			subV = uint32(md.SubsamplingV[0])
		}
		desc = descriptor.CDCIEssenceDescriptor{
			PictureEssenceDescriptor: descriptor.PictureEssenceDescriptor{
				FileDescriptor: descriptor.FileDescriptor{
					InstanceUID:      descUID,
					EssenceContainer: essenceContainer,
					Codec:            codecUL,
				},
				StoredWidth:          uint32(md.Width),
				StoredHeight:         uint32(md.Height),
				AspectRatio:          id.NewRational(int32(md.Width), int32(md.Height)),
				PictureEssenceCoding: codecUL,
			},
			ComponentDepth:        depth,
			HorizontalSubsampling: subH,
			VerticalSubsampling:   subV,
		}
		sub := descriptor.JPEGXSSubDescriptorFromMetadata(subUID, md)
		subDescs = append(subDescs, sub)

	default:
		return nil, errs.New(errs.KindParam, op, "unknown picture codec")
	}

	inner, err := essence.OpenWrite(path, info, desc, essenceContainer, opPattern, source, subDescs, cfg.WriterOptions...)
	if err != nil {
		return nil, err
	}

	return &PictureWriter{codec: codec, inner: inner, shapeDigest: shapeDigest}, nil
}

// WriteFrame writes one codestream frame verbatim. Callers are expected
// to have validated it against the same codec the writer was opened
// with; PictureWriter re-walks each frame's codestream header to derive
// its own PlaintextOffset (spec.md §4.2's PlaintextPad boundary), so an
// encryptor ciphers only the compressed picture data.
func (w *PictureWriter) WriteFrame(buffer *essence.FrameBuffer, encryptor *envelope.Encryptor) error {
	const op = "asdcp.PictureWriter.WriteFrame"

	frame := buffer.Bytes()[:buffer.SourceLength]

	switch w.codec {
	case PictureCodecJP2K:
		md, err := jp2k.Walk(frame)
		if err != nil {
			return errs.Wrap(errs.KindRawFormat, op, err)
		}
		buffer.PlaintextOffset = md.PlaintextOffset
		if w.inner.Pedantic() && jp2kShapeDigest(md) != w.shapeDigest {
			return errs.New(errs.KindFormat, op, "frame codestream parameters do not match the descriptor the sequence was opened with")
		}
	case PictureCodecJPEGXS:
		md, err := jxs.Walk(frame)
		if err != nil {
			return errs.Wrap(errs.KindRawFormat, op, err)
		}
		buffer.PlaintextOffset = md.PlaintextOffset
		if w.inner.Pedantic() && jxsShapeDigest(md) != w.shapeDigest {
			return errs.New(errs.KindFormat, op, "frame codestream parameters do not match the descriptor the sequence was opened with")
		}
	}

	return w.inner.WriteFrame(buffer, encryptor)
}

// Finalize closes out the session per spec.md §4.9.
func (w *PictureWriter) Finalize() error { return w.inner.Finalize() }

// Close releases the underlying file handle.
func (w *PictureWriter) Close() error { return w.inner.Close() }

// Duration returns the number of frames written so far.
func (w *PictureWriter) Duration() uint64 { return w.inner.Duration() }

// PictureReader wraps essence.Reader for JP2K/JPEG-XS picture essence,
// resolving the CDCIEssenceDescriptor and its coding-parameter
// sub-descriptor back from the header.
type PictureReader struct {
	codec PictureCodec
	inner *essence.Reader

	haveShapeDigest bool
	shapeDigest     uint64
}

// OpenPictureReader opens path for reading picture essence of the given
// codec.
func OpenPictureReader(path string, codec PictureCodec, essenceContainerKey id.UL, opts ...Option) (*PictureReader, error) {
	const op = "asdcp.OpenPictureReader"

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	inner, err := essence.OpenRead(path, essenceContainerKey, cfg.ReaderOptions...)
	if err != nil {
		return nil, err
	}

	return &PictureReader{codec: codec, inner: inner}, nil
}

// ReadFrame reads frame n's codestream bytes verbatim. If WithReaderPedantic
// was set, every frame after the first is cross-checked against the first
// frame's codestream parameters (resolution, subsampling, bit depth).
func (r *PictureReader) ReadFrame(n uint64, buffer *essence.FrameBuffer, decryptor *envelope.Decryptor) error {
	const op = "asdcp.PictureReader.ReadFrame"

	if err := r.inner.ReadFrame(n, buffer, decryptor); err != nil {
		return err
	}

	if !r.inner.Pedantic() {
		return nil
	}

	frame := buffer.Bytes()[:buffer.SourceLength]

	var got uint64
	switch r.codec {
	case PictureCodecJP2K:
		md, err := jp2k.Walk(frame)
		if err != nil {
			return errs.Wrap(errs.KindRawFormat, op, err)
		}
		got = jp2kShapeDigest(md)
	case PictureCodecJPEGXS:
		md, err := jxs.Walk(frame)
		if err != nil {
			return errs.Wrap(errs.KindRawFormat, op, err)
		}
		got = jxsShapeDigest(md)
	}

	if !r.haveShapeDigest {
		r.shapeDigest = got
		r.haveShapeDigest = true
		return nil
	}

	if got != r.shapeDigest {
		return errs.New(errs.KindFormat, op, "frame codestream parameters do not match earlier frames in the sequence")
	}

	return nil
}

// ReadStereoPair reads one interleaved left/right edit unit pair: it
// requires WithStereo and reads edit units 2*pairIndex and
// 2*pairIndex+1 as the left and right eyes respectively.
func (r *PictureReader) ReadStereoPair(pairIndex uint64, left, right *essence.FrameBuffer, decryptor *envelope.Decryptor) error {
	const op = "asdcp.PictureReader.ReadStereoPair"

	if !r.inner.Stereo() {
		return errs.New(errs.KindState, op, "stereo pair reads require WithStereo")
	}

	if err := r.ReadFrame(pairIndex*2, left, decryptor); err != nil {
		return err
	}

	return r.ReadFrame(pairIndex*2+1, right, decryptor)
}

// Descriptor decodes the header's CDCIEssenceDescriptor.
func (r *PictureReader) Descriptor() (descriptor.CDCIEssenceDescriptor, error) {
	return descriptor.ParseCDCIEssenceDescriptor(setValue(r.inner.Descriptor(), r.inner.Primer()), r.inner.Primer())
}

// SubDescriptor decodes the coding-parameter sub-descriptor linked from
// the main descriptor, if one was written.
func (r *PictureReader) SubDescriptor() (jp2kDesc descriptor.JPEG2000PictureSubDescriptor, jxsDesc descriptor.JPEGXSPictureSubDescriptor, err error) {
	const op = "asdcp.PictureReader.SubDescriptor"

	refs, ok, err := descriptor.GetSubDescriptorRefs(r.inner.Descriptor())
	if err != nil {
		return jp2kDesc, jxsDesc, err
	}
	if !ok || len(refs) == 0 {
		return jp2kDesc, jxsDesc, errs.New(errs.KindFormat, op, "descriptor carries no sub-descriptor reference")
	}

	sdSet, ok := r.inner.Set(refs[0])
	if !ok {
		return jp2kDesc, jxsDesc, errs.New(errs.KindFormat, op, "sub-descriptor reference does not resolve")
	}

	switch r.codec {
	case PictureCodecJP2K:
		jp2kDesc, err = descriptor.ParseJPEG2000PictureSubDescriptor(setValue(sdSet, r.inner.Primer()), r.inner.Primer())
	case PictureCodecJPEGXS:
		jxsDesc, err = descriptor.ParseJPEGXSPictureSubDescriptor(setValue(sdSet, r.inner.Primer()), r.inner.Primer())
	}

	return jp2kDesc, jxsDesc, err
}

// Duration returns the container duration in edit units, or in stereo
// pairs when WithStereo was set.
func (r *PictureReader) Duration() uint64 {
	d := r.inner.Duration()
	if r.inner.Stereo() {
		return d / 2
	}

	return d
}

// Close releases the underlying file handle.
func (r *PictureReader) Close() error { return r.inner.Close() }
