package essence_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func writeSimpleFile(t *testing.T, path string, essenceKey id.UL, frames [][]byte) {
	t.Helper()

	source := testRNG(t)
	desc := testDescriptor(t)

	w, err := essence.OpenWrite(path, essence.WriterInfo{}, desc, essenceKey, mxf.OPAtom, source, nil,
		essence.WithEditRate(id.NewRational(24, 1)),
	)
	require.NoError(t, err)

	for _, f := range frames {
		buf := essence.NewFrameBuffer()
		buf.SetBytes(f)
		require.NoError(t, w.WriteFrame(buf, nil))
		buf.Release()
	}

	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())
}

func TestReaderStateAfterOpenIsReady(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mxf")
	writeSimpleFile(t, path, testEssenceKey, [][]byte{[]byte("one")})

	r, err := essence.OpenRead(path, testEssenceKey)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, essence.ReaderReady, r.State())
}

func TestReaderCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mxf")
	writeSimpleFile(t, path, testEssenceKey, [][]byte{[]byte("one")})

	r, err := essence.OpenRead(path, testEssenceKey)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, essence.ReaderClosed, r.State())
}

func TestReaderRejectsMismatchedEssenceKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mxf")
	writeSimpleFile(t, path, testEssenceKey, [][]byte{[]byte("payload")})

	wrongKey := id.MustParseHexUL("060e2b34010201010d01030109090900")

	r, err := essence.OpenRead(path, wrongKey)
	require.NoError(t, err)
	defer r.Close()

	err = r.ReadFrame(0, essence.NewFrameBuffer(), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindFormat))
}

func TestReaderPreservesFrameOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mxf")
	frames := [][]byte{
		[]byte("alpha"),
		[]byte("bravo"),
		[]byte("charlie"),
		[]byte("delta"),
	}
	writeSimpleFile(t, path, testEssenceKey, frames)

	r, err := essence.OpenRead(path, testEssenceKey)
	require.NoError(t, err)
	defer r.Close()

	// read back out of order to confirm each index seeks independently
	order := []int{3, 0, 2, 1}
	for _, i := range order {
		buf := essence.NewFrameBuffer()
		require.NoError(t, r.ReadFrame(uint64(i), buf, nil))
		assert.Equal(t, frames[i], buf.Bytes()[:buf.SourceLength])
		buf.Release()
	}
}
