// Package essence implements the L4 essence reader/writer state
// machines of spec.md §4.8/§4.9: the OP-Atom (AS-DCP) and OP-1a (AS-02)
// operational patterns layered over the mxf object model. A Writer owns
// a single open file exclusively and is not safe for concurrent use
// (spec.md §5); callers that need parallelism open independent sessions.
package essence

import (
	"github.com/cinecert/asdcplib-sub002/internal/pool"
)

// FrameBuffer is the owned byte region spec.md §3 describes: a
// resizable buffer with a sequence number, a plaintext offset (for
// ciphertext buffers, where the AES-CBC region begins), a source
// length (the decrypted length), and an optional trailing MIC. A
// FrameBuffer is created by the caller and consumed by exactly one
// ReadFrame/WriteFrame call; it is not safe to share across calls.
type FrameBuffer struct {
	buf *pool.ByteBuffer

	// FrameNumber is the edit-unit sequence number this buffer was
	// populated from (read) or written as (write).
	FrameNumber uint32

	// PlaintextOffset is the byte index, within Bytes(), at which
	// AES-CBC ciphertext begins. The picture facades set it to the
	// codestream header length on every frame, encrypted or not; for
	// other essence it stays zero unless a frame was read encrypted.
	PlaintextOffset int

	// SourceLength is the decrypted length of the frame; equal to
	// len(Bytes()) for unencrypted frames.
	SourceLength int

	// MIC is the trailing HMAC-SHA1 message integrity code, present
	// only when the frame was sealed under an HMAC context.
	MIC []byte
}

// NewFrameBuffer returns a FrameBuffer backed by a pooled byte buffer,
// ready to be filled by SetBytes or grown by Bytes()'s underlying
// storage.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{buf: pool.GetFrameBuffer()}
}

// Release returns the FrameBuffer's underlying storage to the shared
// pool. Callers must not use fb after calling Release.
func (fb *FrameBuffer) Release() {
	if fb.buf != nil {
		pool.PutFrameBuffer(fb.buf)
		fb.buf = nil
	}
}

// Bytes returns the buffer's current content.
func (fb *FrameBuffer) Bytes() []byte {
	if fb.buf == nil {
		return nil
	}

	return fb.buf.Bytes()
}

// SetBytes replaces the buffer's content with data and sets SourceLength
// to len(data).
func (fb *FrameBuffer) SetBytes(data []byte) {
	if fb.buf == nil {
		fb.buf = pool.GetFrameBuffer()
	}

	fb.buf.Reset()
	fb.buf.MustWrite(data)
	fb.SourceLength = len(data)
}

// Len returns the current buffer length.
func (fb *FrameBuffer) Len() int {
	if fb.buf == nil {
		return 0
	}

	return fb.buf.Len()
}
