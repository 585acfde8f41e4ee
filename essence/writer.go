package essence

import (
	"io"
	"os"

	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/options"
	"github.com/cinecert/asdcplib-sub002/klv"
	"github.com/cinecert/asdcplib-sub002/mxf"
	"github.com/cinecert/asdcplib-sub002/rng"
)

// WriterState identifies where a Writer sits in spec.md §4.9's state
// machine: Closed -> Opened -> FramesWritten -> Finalized -> Closed.
type WriterState uint8

const (
	WriterClosed WriterState = iota
	WriterOpened
	WriterFramesWritten
	WriterFinalized
)

// Descriptor is any essence descriptor that can serialize itself as a
// metadata set — spec.md §9's "polymorphic descriptors": the Writer
// accepts the base capability (ToSet) and never inspects which concrete
// variant (picture, sound, timed-text, data) it was given.
type Descriptor interface {
	ToSet() *mxf.Set
}

// Writer implements the OP-Atom/OP-1a essence writer state machine of
// spec.md §4.9. A Writer owns one file exclusively and is not safe for
// concurrent use (spec.md §5); open independent Writers for parallel
// sessions.
type Writer struct {
	state WriterState

	f *os.File
	rng *rng.RNG

	cfg *WriterConfig
	info WriterInfo

	essenceKey         id.UL // per-frame essence KLV key
	operationalPattern id.UL

	primer            *mxf.Primer
	preface           *mxf.Preface
	descriptorSet     *mxf.Set
	subDescriptorSets []*mxf.Set

	headerPartitionOffset int64
	bodyStart             int64 // first byte after the reserved header window
	bodyCursor            int64 // running body-offset, next essence KLV lands here
	duration              uint64

	index *mxf.IndexTableSegment
}

// OpenWrite implements spec.md §4.9's open_write: it writes the header
// partition pack, primer, header metadata (object graph + descriptor +
// any sub-descriptors), and header_reserve bytes of filler, then
// transitions Closed -> Opened. subDescriptors carries per-essence-kind
// coding-parameter or audio-labeling sub-descriptors (spec.md §3's
// JPEG2000PictureSubDescriptor / JPEGXSPictureSubDescriptor /
// MCALabelSubDescriptor family); it may be empty.
func OpenWrite(
	path string,
	info WriterInfo,
	desc Descriptor,
	essenceKey id.UL,
	operationalPattern id.UL,
	source *rng.RNG,
	subDescriptors []Descriptor,
	opts ...WriterOption,
) (*Writer, error) {
	const op = "essence.OpenWrite"

	if source == nil {
		return nil, errs.New(errs.KindParam, op, "a random source is required to build object identifiers")
	}

	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileOpen, op, err)
	}

	w := &Writer{
		f:                  f,
		rng:                source,
		cfg:                cfg,
		info:               info,
		essenceKey:         essenceKey,
		operationalPattern: operationalPattern,
	}

	for _, sd := range subDescriptors {
		w.subDescriptorSets = append(w.subDescriptorSets, sd.ToSet())
	}

	if err := w.writeHeader(desc); err != nil {
		f.Close()
		return nil, err
	}

	w.state = WriterOpened

	return w, nil
}

func (w *Writer) newUUID(op string) (id.UUID, error) {
	u, err := id.NewUUID(w.rng)
	if err != nil {
		return u, errs.Wrap(errs.KindAlloc, op, err)
	}

	return u, nil
}

// buildPreface constructs the minimal, spec.md §3-conformant object
// graph: one Preface -> one ContentStorage -> one MaterialPackage and
// one SourcePackage, each with a single Track/Sequence, the source
// package's track descriptor referencing desc.
func (w *Writer) buildPreface(descInstanceUID id.UUID) error {
	const op = "essence.Writer.buildPreface"

	materialUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	sourceUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	materialTrackUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	sourceTrackUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	materialSeqUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	sourceSeqUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	contentStorageUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	prefaceUID, err := w.newUUID(op)
	if err != nil {
		return err
	}
	materialMaterialNumber, err := w.newUUID(op)
	if err != nil {
		return err
	}
	sourceMaterialNumber, err := w.newUUID(op)
	if err != nil {
		return err
	}

	materialSeq := &mxf.Sequence{InstanceUID: materialSeqUID}
	materialTrack := &mxf.Track{
		InstanceUID: materialTrackUID,
		TrackID:     1,
		EditRate:    w.cfg.EditRate,
		Sequence:    materialSeq,
	}
	materialPkg := &mxf.Package{
		Key:         mxf.MaterialPackageKey,
		InstanceUID: materialUID,
		PackageUID:  id.NewUMID(materialMaterialNumber),
		Tracks:      []*mxf.Track{materialTrack},
	}

	sourceSeq := &mxf.Sequence{InstanceUID: sourceSeqUID}
	sourceTrack := &mxf.Track{
		InstanceUID: sourceTrackUID,
		TrackID:     1,
		EditRate:    w.cfg.EditRate,
		Sequence:    sourceSeq,
	}
	sourcePkg := &mxf.Package{
		Key:           mxf.SourcePackageKey,
		InstanceUID:   sourceUID,
		PackageUID:    id.NewUMID(sourceMaterialNumber),
		Tracks:        []*mxf.Track{sourceTrack},
		DescriptorRef: &descInstanceUID,
	}

	contentStorage := &mxf.ContentStorage{
		InstanceUID: contentStorageUID,
		Packages:    []*mxf.Package{materialPkg, sourcePkg},
	}

	w.preface = &mxf.Preface{
		InstanceUID:    prefaceUID,
		ContentStorage: contentStorage,
	}

	return nil
}

// writeHeader assembles and writes the header partition pack, primer,
// object graph, descriptor, and reserved filler.
func (w *Writer) writeHeader(desc Descriptor) error {
	const op = "essence.Writer.writeHeader"

	w.primer = mxf.NewPrimer()
	w.descriptorSet = desc.ToSet()

	if err := w.buildPreface(w.descriptorSet.InstanceUID); err != nil {
		return err
	}

	if len(w.subDescriptorSets) > 0 {
		uids := make([]id.UUID, len(w.subDescriptorSets))
		for i, s := range w.subDescriptorSets {
			uids[i] = s.InstanceUID
		}
		descriptor.PutSubDescriptorRefs(w.descriptorSet, uids)
	}

	sets := w.preface.ObjectGraph()
	sets = append(sets, w.descriptorSet)
	sets = append(sets, w.subDescriptorSets...)

	var body []byte
	for _, s := range sets {
		body = append(body, s.Bytes(w.primer)...)
	}

	metadata := make([]byte, 0, len(body)+4096)
	metadata = append(metadata, w.primer.Bytes()...)
	metadata = append(metadata, body...)

	pack := &mxf.PartitionPack{
		Key:                mxf.HeaderPartitionKey,
		MajorVersion:       1,
		KAGSize:            1,
		ThisPartition:      0,
		PreviousPartition:  0,
		FooterPartition:    0, // patched at Finalize
		HeaderByteCount:    0, // patched below, once the reserved window's true size is known
		IndexByteCount:     0,
		IndexSID:           0,
		BodyOffset:         0,
		BodySID:            1,
		OperationalPattern: w.operationalPattern,
		EssenceContainers:  []id.UL{w.essenceKey},
	}
	packBytes := pack.Bytes()

	if _, err := w.f.Write(packBytes); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	if _, err := w.f.Write(metadata); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	if _, err := klv.WriteFiller(w.f, int(w.cfg.HeaderReserve)); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	offset, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	w.headerPartitionOffset = 0
	w.bodyStart = offset
	w.bodyCursor = offset

	pack.HeaderByteCount = uint64(offset - int64(len(packBytes)))
	if _, err := w.f.Seek(w.headerPartitionOffset, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}
	if _, err := w.f.Write(pack.Bytes()); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}
	if _, err := w.f.Seek(offset, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	w.index = &mxf.IndexTableSegment{
		IndexEditRate: w.cfg.EditRate,
		IndexSID:      1,
		BodySID:       1,
	}

	return nil
}

// WriteFrame implements spec.md §4.9's write_frame: it writes one
// essence KLV (sealed in a crypto envelope if encryptor is supplied), appends
// an index entry at the current body offset, and increments the
// container duration. Requires Opened or FramesWritten.
func (w *Writer) WriteFrame(buffer *FrameBuffer, encryptor *envelope.Encryptor) error {
	const op = "essence.Writer.WriteFrame"

	if w.state != WriterOpened && w.state != WriterFramesWritten {
		return errs.New(errs.KindState, op, "write_frame requires Opened or FramesWritten")
	}

	plaintext := buffer.Bytes()[:buffer.SourceLength]

	value := plaintext
	if encryptor != nil {
		iv, err := w.rng.IV()
		if err != nil {
			return errs.Wrap(errs.KindCryptInit, op, err)
		}

		header := envelope.Header{
			ContextID:       w.info.ContextID,
			PlaintextOffset: uint64(buffer.PlaintextOffset),
			SourceKey:       w.essenceKey,
			EssenceUL:       w.essenceKey,
		}

		sealed, err := encryptor.Seal(header, iv, plaintext)
		if err != nil {
			return errs.Wrap(errs.KindCryptFail, op, err)
		}
		value = sealed
	}

	streamOffset := w.bodyCursor

	n, err := klv.WriteEssenceTriple(w.f, w.essenceKey, value)
	if err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	w.bodyCursor += int64(n)
	w.index.Append(mxf.IndexEntry{
		TemporalOffset: 0,
		KeyFrameOffset: 0,
		Flags:          0xFF,
		StreamOffset:   uint64(streamOffset),
	})
	w.duration++
	w.state = WriterFramesWritten

	return nil
}

// Finalize implements spec.md §4.9's finalize: it writes the footer
// partition pack, the index table segment, and the RIP, then seeks
// back and rewrites the header partition pack (with the correct footer
// offset) and the descriptor's ContainerDuration within the reserved
// header window. Transitions to Finalized.
func (w *Writer) Finalize() error {
	const op = "essence.Writer.Finalize"

	if w.state != WriterOpened && w.state != WriterFramesWritten {
		return errs.New(errs.KindState, op, "finalize requires Opened or FramesWritten")
	}

	footerOffset := w.bodyCursor

	w.index.IndexDuration = w.duration
	indexBytes := w.index.Bytes(w.primer)

	footer := &mxf.PartitionPack{
		Key:                mxf.FooterPartitionKey,
		MajorVersion:       1,
		KAGSize:            1,
		ThisPartition:      uint64(footerOffset),
		PreviousPartition:  uint64(w.headerPartitionOffset),
		FooterPartition:    uint64(footerOffset),
		HeaderByteCount:    0,
		IndexByteCount:     uint64(len(indexBytes)),
		IndexSID:           1,
		BodyOffset:         0,
		BodySID:            0,
		OperationalPattern: w.operationalPattern,
		EssenceContainers:  []id.UL{w.essenceKey},
	}

	if _, err := w.f.Write(footer.Bytes()); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}
	if _, err := w.f.Write(indexBytes); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	rip := &mxf.RIP{}
	rip.Append(0, uint64(w.headerPartitionOffset))
	rip.Append(0, uint64(footerOffset))

	if _, err := w.f.Write(rip.Bytes()); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	if err := w.rewriteHeader(footerOffset); err != nil {
		return err
	}

	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	w.state = WriterFinalized

	return nil
}

// rewriteHeader seeks back to the header partition and rewrites the
// partition pack and metadata in place within the reserved window,
// per spec.md §4.9 and §4.10's round-trip invariant: bytes outside
// [0, header_reserve] of the header partition are never touched.
func (w *Writer) rewriteHeader(footerOffset int64) error {
	const op = "essence.Writer.rewriteHeader"

	descriptor.PatchContainerDuration(w.descriptorSet, w.duration)

	sets := w.preface.ObjectGraph()
	sets = append(sets, w.descriptorSet)
	sets = append(sets, w.subDescriptorSets...)

	// Reuse w.primer (already carrying the index table segment's tags
	// allocated above) rather than a fresh Primer: AllocateTag is
	// idempotent per UL, so replaying the same sets only confirms the
	// tags already assigned at OpenWrite, and the written primer pack
	// ends up complete for every tag either region references.
	var body []byte
	for _, s := range sets {
		body = append(body, s.Bytes(w.primer)...)
	}

	metadata := make([]byte, 0, len(body)+4096)
	metadata = append(metadata, w.primer.Bytes()...)
	metadata = append(metadata, body...)

	pack := &mxf.PartitionPack{
		Key:                mxf.HeaderPartitionKey,
		MajorVersion:       1,
		KAGSize:            1,
		ThisPartition:      uint64(w.headerPartitionOffset),
		PreviousPartition:  0,
		FooterPartition:    uint64(footerOffset),
		HeaderByteCount:    uint64(w.bodyStart - w.headerPartitionOffset), // patched below to subtract the pack itself, once packBytes' length is known
		IndexByteCount:     0,
		IndexSID:           0,
		BodyOffset:         0,
		BodySID:            1,
		OperationalPattern: w.operationalPattern,
		EssenceContainers:  []id.UL{w.essenceKey},
	}
	packBytes := pack.Bytes()
	pack.HeaderByteCount -= uint64(len(packBytes))
	packBytes = pack.Bytes()

	if _, err := w.f.Seek(w.headerPartitionOffset, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	if _, err := w.f.Write(packBytes); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	if _, err := w.f.Write(metadata); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	metadataEnd, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	// The filler's key and its fixed 9-byte long-form length field take
	// part of the remaining window; the value takes exactly what is left,
	// so the filler ends at bodyStart whatever the window's size.
	fillerValueLen := int(w.bodyStart-metadataEnd) - id.ULSize - klv.EssenceLengthSize
	if fillerValueLen < 0 {
		return errs.New(errs.KindSmallBuf, op, "rewritten header metadata no longer fits header_reserve")
	}

	filler := make([]byte, 0, id.ULSize+klv.EssenceLengthSize+fillerValueLen)
	filler = append(filler, klv.FillerUL[:]...)
	filler = append(filler, klv.EncodeEssenceLength(uint64(fillerValueLen))...)
	filler = append(filler, make([]byte, fillerValueLen)...)
	if _, err := w.f.Write(filler); err != nil {
		return errs.Wrap(errs.KindWriteFail, op, err)
	}

	return nil
}

// Close releases the Writer's file handle. It does not finalize an
// unfinalized file; call Finalize first.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}

	err := w.f.Close()
	w.f = nil
	w.state = WriterClosed

	return err
}

// State returns the Writer's current state-machine state.
func (w *Writer) State() WriterState { return w.state }

// Pedantic reports whether WithWriterPedantic was set, so a facade can
// decide whether to cross-check each frame's derived descriptor against
// the one the sequence was opened with.
func (w *Writer) Pedantic() bool { return w.cfg.Pedantic }

// Duration returns the number of frames written so far.
func (w *Writer) Duration() uint64 { return w.duration }
