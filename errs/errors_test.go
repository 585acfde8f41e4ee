package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/errs"
)

func TestErrorFormatting(t *testing.T) {
	e := errs.New(errs.KindFormat, "mxf.ReadPartitionPack", "missing RIP")
	assert.Contains(t, e.Error(), "Format")
	assert.Contains(t, e.Error(), "missing RIP")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("short read")
	e := errs.Wrap(errs.KindReadFail, "membuf.Reader.ReadRaw", cause)
	require.ErrorIs(t, e, cause)
	assert.Equal(t, errs.KindReadFail, errs.KindOf(e))
}

func TestIsMatchesKindAcrossWrapping(t *testing.T) {
	inner := errs.New(errs.KindEndOfFile, "essence.Reader.ReadFrame", "")
	outer := errs.WrapMsg(errs.KindEndOfFile, "asdcp.PictureReader.ReadFrame", "frame 10", inner)
	assert.True(t, errs.Is(outer, errs.KindEndOfFile))
	assert.False(t, errs.Is(outer, errs.KindFormat))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, errs.ExitCode(nil))
	assert.Equal(t, 3, errs.ExitCode(errs.New(errs.KindParam, "op", "")))
	assert.Equal(t, 1, errs.ExitCode(errs.New(errs.KindFormat, "op", "")))
}
