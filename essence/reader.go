package essence

import (
	"io"
	"os"

	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/envelope"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/options"
	"github.com/cinecert/asdcplib-sub002/klv"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

// Local tags duplicated from mxf's own (unexported) object-graph tags:
// mxf.Set.Get looks a tuple up by its local tag, so a reader
// assembling the object graph back from sets needs the same constants
// the writer side (mxf/objectgraph.go) used to Put them.
const (
	tagPackages      = 0x1901
	tagPackageTracks = 0x4403
	tagDescriptorRef = 0x4701
)

// ReaderState identifies where a Reader sits in spec.md §4.8's state
// machine: Closed -> HeaderLoaded -> IndexLoaded -> Ready -> FrameRead
// -> Closed. FrameRead and Ready are equivalent for every operation
// ReadFrame permits (spec.md §4.8 only distinguishes them to mark that
// at least one frame has been read); Reader tracks them as one state.
type ReaderState uint8

const (
	ReaderClosed ReaderState = iota
	ReaderHeaderLoaded
	ReaderIndexLoaded
	ReaderReady
)

// Reader implements the OP-Atom/OP-1a essence reader state machine of
// spec.md §4.8. A Reader owns one file exclusively and is not safe for
// concurrent use (spec.md §5).
type Reader struct {
	state ReaderState

	f   *os.File
	cfg *ReaderConfig

	essenceKey id.UL

	header    *mxf.PartitionPack
	footer    *mxf.PartitionPack
	primer    *mxf.Primer
	preface   *mxf.Preface
	descSet   *mxf.Set
	sets      map[id.UUID]*mxf.Set
	index     *mxf.IndexTableSegment
	rip       *mxf.RIP
}

// OpenRead implements spec.md §4.8's open_read: it reads the header
// partition pack, primer, header metadata, reads the index table
// segment from the footer partition, and transitions
// Closed -> IndexLoaded -> Ready. The index is always taken from the
// footer; an index carried in the header partition is not looked for.
func OpenRead(path string, essenceKey id.UL, opts ...ReaderOption) (*Reader, error) {
	const op = "essence.OpenRead"

	cfg := defaultReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, errs.Wrap(errs.KindParam, op, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileOpen, op, err)
	}

	r := &Reader{f: f, cfg: cfg, essenceKey: essenceKey}

	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	r.state = ReaderHeaderLoaded

	if err := r.readIndex(); err != nil {
		f.Close()
		return nil, err
	}
	r.state = ReaderIndexLoaded

	r.state = ReaderReady

	return r, nil
}

func (r *Reader) readHeader() error {
	const op = "essence.Reader.readHeader"

	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	h, err := klv.ReadHeader(r.f)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	if !h.Key.Equal(mxf.HeaderPartitionKey) {
		return errs.New(errs.KindFormat, op, "first KLV is not the header partition pack")
	}

	value := make([]byte, h.Length)
	if _, err := io.ReadFull(r.f, value); err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}

	pack, err := mxf.ParsePartitionPack(h.Key, value)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	r.header = pack

	packEnd, err := r.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	ph, err := klv.ReadHeader(r.f)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	if !ph.Key.Equal(mxf.PrimerPackKey) {
		return errs.New(errs.KindFormat, op, "header partition is missing its primer pack")
	}

	primerValue := make([]byte, ph.Length)
	if _, err := io.ReadFull(r.f, primerValue); err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}

	primer, err := mxf.ParsePrimer(primerValue)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	r.primer = primer

	metadataEnd := packEnd + int64(pack.HeaderByteCount)

	pf, descSet, err := r.readObjectGraph(metadataEnd)
	if err != nil {
		return err
	}
	r.preface = pf
	r.descSet = descSet

	return nil
}

// readObjectGraph decodes every metadata set between the primer pack
// and metadataEnd (the end of the header partition's declared byte
// range), skipping filler, and reassembles the Preface and the
// descriptor set referenced by the source package.
func (r *Reader) readObjectGraph(metadataEnd int64) (*mxf.Preface, *mxf.Set, error) {
	const op = "essence.Reader.readObjectGraph"

	sets := make(map[id.UUID]*mxf.Set)
	var prefaceSet, contentStorageSet *mxf.Set

	for {
		pos, err := r.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindBadSeek, op, err)
		}
		if pos >= metadataEnd {
			break
		}

		h, err := klv.ReadHeader(r.f)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindFormat, op, err)
		}

		value := make([]byte, h.Length)
		if _, err := io.ReadFull(r.f, value); err != nil {
			return nil, nil, errs.Wrap(errs.KindReadFail, op, err)
		}

		if klv.IsFiller(h.Key) {
			continue
		}

		s, err := mxf.ParseSet(h.Key, value, r.primer)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindFormat, op, err)
		}
		sets[s.InstanceUID] = s

		switch {
		case h.Key.Equal(mxf.PrefaceKey):
			prefaceSet = s
		case h.Key.Equal(mxf.ContentStorageKey):
			contentStorageSet = s
		}
	}

	if prefaceSet == nil || contentStorageSet == nil {
		return nil, nil, errs.New(errs.KindFormat, op, "header metadata missing Preface or ContentStorage")
	}

	r.sets = sets

	pf, descInstanceUID, err := assemblePreface(prefaceSet, contentStorageSet, sets)
	if err != nil {
		return nil, nil, err
	}

	descSet, ok := sets[descInstanceUID]
	if !ok {
		return nil, nil, errs.New(errs.KindFormat, op, "source package descriptor reference does not resolve")
	}

	return pf, descSet, nil
}

func (r *Reader) readIndex() error {
	const op = "essence.Reader.readIndex"

	footerOffset := int64(r.header.FooterPartition)

	if _, err := r.f.Seek(footerOffset, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	h, err := klv.ReadHeader(r.f)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	if !h.Key.Equal(mxf.FooterPartitionKey) {
		return errs.New(errs.KindFormat, op, "footer offset does not point at a footer partition pack")
	}

	value := make([]byte, h.Length)
	if _, err := io.ReadFull(r.f, value); err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}

	footer, err := mxf.ParsePartitionPack(h.Key, value)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	r.footer = footer

	ih, err := klv.ReadHeader(r.f)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	if !ih.Key.Equal(mxf.IndexTableSegmentKey) {
		return errs.New(errs.KindFormat, op, "footer partition is missing its index table segment")
	}

	indexValue := make([]byte, ih.Length)
	if _, err := io.ReadFull(r.f, indexValue); err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}

	index, err := mxf.ParseIndexTableSegment(indexValue, r.primer)
	if err != nil {
		return errs.Wrap(errs.KindFormat, op, err)
	}
	r.index = index

	return nil
}

// ReadFrame implements spec.md §4.8's read_frame: it looks up entry n,
// seeks to its stream offset, reads one essence KLV (whose key must
// equal the container's essence UL), and, if the frame is ciphertext
// and a decryptor is supplied, decrypts and verifies it. Requires
// Ready. Fails with EndOfFile when n >= duration.
func (r *Reader) ReadFrame(n uint64, buffer *FrameBuffer, decryptor *envelope.Decryptor) error {
	const op = "essence.Reader.ReadFrame"

	if r.state != ReaderReady {
		return errs.New(errs.KindState, op, "read_frame requires Ready")
	}

	if n >= uint64(len(r.index.Entries)) {
		return errs.New(errs.KindEndOfFile, op, "frame number beyond container duration")
	}

	entry := r.index.Entries[n]

	if _, err := r.f.Seek(int64(entry.StreamOffset), io.SeekStart); err != nil {
		return errs.Wrap(errs.KindBadSeek, op, err)
	}

	h, err := klv.ReadHeader(r.f)
	if err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}
	if !h.Key.Equal(r.essenceKey) {
		return errs.New(errs.KindFormat, op, "essence KLV key does not match container essence UL")
	}

	value := make([]byte, h.Length)
	if _, err := io.ReadFull(r.f, value); err != nil {
		return errs.Wrap(errs.KindReadFail, op, err)
	}

	if decryptor != nil {
		eh, plaintext, err := decryptor.Open(value)
		if err != nil {
			return err
		}
		buffer.SetBytes(plaintext)
		buffer.PlaintextOffset = int(eh.PlaintextOffset)
	} else {
		buffer.SetBytes(value)
	}

	buffer.FrameNumber = uint32(n)

	r.state = ReaderReady

	return nil
}

// Close implements spec.md §4.8's close: it releases the file handle
// and transitions to Closed.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}

	err := r.f.Close()
	r.f = nil
	r.state = ReaderClosed

	return err
}

// State returns the Reader's current state-machine state.
func (r *Reader) State() ReaderState { return r.state }

// Pedantic reports whether WithReaderPedantic was set, so a facade can
// decide whether to cross-check each frame's codestream parameters
// against those of the first frame it read.
func (r *Reader) Pedantic() bool { return r.cfg.Pedantic }

// Stereo reports whether WithStereo was set, so a JP2K facade can treat
// successive frames as interleaved left/right pairs.
func (r *Reader) Stereo() bool { return r.cfg.Stereo }

// Duration returns the container duration recorded in the index.
func (r *Reader) Duration() uint64 {
	if r.index == nil {
		return 0
	}

	return uint64(len(r.index.Entries))
}

// Descriptor returns the raw essence descriptor set read from the
// header metadata, for a facade to decode via the concrete
// descriptor.ParseXxx function matching the essence kind it expects.
func (r *Reader) Descriptor() *mxf.Set { return r.descSet }

// Primer returns the header partition's primer, needed to decode
// Descriptor()'s tuples.
func (r *Reader) Primer() *mxf.Primer { return r.primer }

// Set resolves any metadata set read from the header by InstanceUID, so
// a facade can follow Descriptor()'s SubDescriptorUIDs reference array
// (descriptor.GetSubDescriptorRefs) to the JPEG2000/JPEGXS/MCA
// sub-descriptor sets an essence kind attaches alongside its main
// descriptor.
func (r *Reader) Set(instanceUID id.UUID) (*mxf.Set, bool) {
	s, ok := r.sets[instanceUID]
	return s, ok
}

// assemblePreface reconstructs a Preface and returns the InstanceUID of
// the source package's essence descriptor, by walking the local-tuple
// references each set carries (tagPackages, tagPackageTracks,
// tagDescriptorRef) against the arena of decoded sets.
func assemblePreface(prefaceSet, contentStorageSet *mxf.Set, sets map[id.UUID]*mxf.Set) (*mxf.Preface, id.UUID, error) {
	const op = "essence.assemblePreface"

	packageUIDs, err := readUUIDArray(contentStorageSet, tagPackages)
	if err != nil {
		return nil, id.UUID{}, errs.Wrap(errs.KindFormat, op, err)
	}

	cs := &mxf.ContentStorage{InstanceUID: contentStorageSet.InstanceUID}

	var descInstanceUID id.UUID
	var sawDescriptor bool

	for _, pkgUID := range packageUIDs {
		pkgSet, ok := sets[pkgUID]
		if !ok {
			return nil, id.UUID{}, errs.New(errs.KindFormat, op, "package reference does not resolve")
		}

		pkg := &mxf.Package{Key: pkgSet.Key, InstanceUID: pkgSet.InstanceUID}

		if raw, ok := pkgSet.Get(tagDescriptorRef); ok {
			u, err := id.ParseUUID(raw)
			if err != nil {
				return nil, id.UUID{}, errs.Wrap(errs.KindFormat, op, err)
			}
			descInstanceUID = u
			sawDescriptor = true
		}

		trackUIDs, err := readUUIDArray(pkgSet, tagPackageTracks)
		if err != nil {
			return nil, id.UUID{}, errs.Wrap(errs.KindFormat, op, err)
		}

		for _, trackUID := range trackUIDs {
			trackSet, ok := sets[trackUID]
			if !ok {
				return nil, id.UUID{}, errs.New(errs.KindFormat, op, "track reference does not resolve")
			}
			pkg.Tracks = append(pkg.Tracks, &mxf.Track{InstanceUID: trackSet.InstanceUID})
		}

		cs.Packages = append(cs.Packages, pkg)
	}

	if !sawDescriptor {
		return nil, id.UUID{}, errs.New(errs.KindFormat, op, "no source package carries a descriptor reference")
	}

	pf := &mxf.Preface{InstanceUID: prefaceSet.InstanceUID, ContentStorage: cs}

	return pf, descInstanceUID, nil
}

// readUUIDArray decodes a (count u32, entrySize u32, UUID...) strong
// reference array tuple, the same shape objectgraph.go writes for
// Packages/Tracks reference arrays.
func readUUIDArray(s *mxf.Set, tag uint16) ([]id.UUID, error) {
	const op = "essence.readUUIDArray"

	raw, ok := s.Get(tag)
	if !ok {
		return nil, nil
	}
	if len(raw) < 8 {
		return nil, errs.New(errs.KindSmallBuf, op, "reference array tuple too short")
	}

	engine := endian.GetBigEndianEngine()
	count := engine.Uint32(raw[0:4])
	entrySize := engine.Uint32(raw[4:8])
	if entrySize != id.UUIDSize {
		return nil, errs.New(errs.KindFormat, op, "unexpected reference array entry size")
	}

	out := make([]id.UUID, 0, count)
	pos := 8
	for i := uint32(0); i < count; i++ {
		if pos+id.UUIDSize > len(raw) {
			return nil, errs.New(errs.KindSmallBuf, op, "reference array shorter than declared count")
		}
		u, err := id.ParseUUID(raw[pos : pos+id.UUIDSize])
		if err != nil {
			return nil, err
		}
		out = append(out, u)
		pos += id.UUIDSize
	}

	return out, nil
}
