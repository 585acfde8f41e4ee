package klv

import (
	"io"

	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/id"
)

// FillerUL is the reserved SMPTE 336 filler-item key. A filler KLV is
// used to align subsequent data to 16-byte boundaries and to pad the
// reserved header-rewrite window described in spec.md §4.9.
var FillerUL = id.MustParseHexUL("060e2b34010101010301021000000000")

// FillerAlign returns the value length a filler KLV must carry to end
// exactly on the next 16-byte boundary when appended at byteOffset. It
// assumes a five-byte length field (0x84 sentinel plus four bytes) for
// the filler itself; WriteFiller encodes the shortest length form
// instead, which is five bytes only for values from 65536 through
// 0xFFFFFFFF bytes.
func FillerAlign(byteOffset int64) int {
	const klvHeaderSize = id.ULSize + 1 + 4 // key + 0x84 sentinel + 4 length bytes
	remainder := (byteOffset + klvHeaderSize) % 16
	if remainder == 0 {
		return 0
	}

	return int(16 - remainder)
}

// WriteFiller writes a filler KLV whose value is valueLen zero bytes.
func WriteFiller(w io.Writer, valueLen int) (int, error) {
	const op = "klv.WriteFiller"
	if valueLen < 0 {
		return 0, errs.New(errs.KindParam, op, "negative filler length")
	}

	return WriteTriple(w, FillerUL, make([]byte, valueLen))
}

// IsFiller reports whether key is the reserved filler UL.
func IsFiller(key id.UL) bool {
	return key.Equal(FillerUL)
}
