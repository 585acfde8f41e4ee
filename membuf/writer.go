package membuf

import (
	"github.com/cinecert/asdcplib-sub002/endian"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/pool"
	"github.com/cinecert/asdcplib-sub002/klv"
)

// Writer accumulates fixed-layout field writes into a pooled byte buffer
// in the engine's byte order, then hands the caller the finished bytes.
type Writer struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewWriter returns a Writer backed by a freshly acquired pooled buffer.
func NewWriter(engine endian.EndianEngine) *Writer {
	return &Writer{buf: pool.GetPartitionBuffer(), engine: engine}
}

// Release returns the Writer's backing buffer to its pool. Callers must
// not use the Writer or any slice returned by Bytes after calling Release.
func (w *Writer) Release() {
	pool.PutPartitionBuffer(w.buf)
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v byte) { w.buf.MustWrite([]byte{v}) }

// WriteU16 appends v in the writer's byte order.
func (w *Writer) WriteU16(v uint16) {
	var tmp [2]byte
	w.engine.PutUint16(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteU32 appends v in the writer's byte order.
func (w *Writer) WriteU32(v uint32) {
	var tmp [4]byte
	w.engine.PutUint32(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteU64 appends v in the writer's byte order.
func (w *Writer) WriteU64(v uint64) {
	var tmp [8]byte
	w.engine.PutUint64(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteRaw appends b verbatim.
func (w *Writer) WriteRaw(b []byte) { w.buf.MustWrite(b) }

// WriteUL appends a 16-byte Universal Label.
func (w *Writer) WriteUL(u id.UL) { w.buf.MustWrite(u.Bytes()) }

// WriteUUID appends a 16-byte UUID.
func (w *Writer) WriteUUID(u id.UUID) { w.buf.MustWrite(u.Bytes()) }

// WriteUMID appends a 32-byte UMID.
func (w *Writer) WriteUMID(u id.UMID) { w.buf.MustWrite(u.Bytes()) }

// WriteBER appends n as a shortest-fitting BER length field.
func (w *Writer) WriteBER(n uint64) { w.buf.MustWrite(klv.EncodeLength(n)) }
