package asdcp_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/asdcp"
	"github.com/cinecert/asdcplib-sub002/errs"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
)

func TestTimedTextWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timedtext.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	resourceID, err := id.NewUUID(source)
	require.NoError(t, err)

	w, err := asdcp.OpenTimedTextWriter(path, info, resourceID, "http://www.smpte-ra.org/schemas/428-7/2010/DCST", source)
	require.NoError(t, err)

	xml := []byte("<SubtitleReel/>")
	require.NoError(t, w.WriteTimedTextResource(xml, nil))

	font := []byte("font-binary-payload")
	require.NoError(t, w.WriteAncillaryResource(font, nil))

	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	_, essenceContainer, _ := asdcp.Labels(asdcp.KindTimedText, essence.LabelSetSMPTE)

	r, err := asdcp.OpenTimedTextReader(path, essenceContainer)
	require.NoError(t, err)

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	require.NoError(t, r.ReadTimedTextResource(buf, nil))
	assert.Equal(t, xml, buf.Bytes()[:buf.SourceLength])

	ancillaryBuf := essence.NewFrameBuffer()
	defer ancillaryBuf.Release()
	got, err := r.ReadAncillaryResource(1, ancillaryBuf, nil)
	require.NoError(t, err)
	assert.Equal(t, font, got)

	_, err = r.ReadAncillaryResource(0, ancillaryBuf, nil)
	assert.True(t, errs.Is(err, errs.KindParam))

	assert.Equal(t, uint64(2), r.Duration())
	require.NoError(t, r.Close())
}

func TestTimedTextWriterRejectsAncillaryBeforeResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timedtext-order.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	resourceID, err := id.NewUUID(source)
	require.NoError(t, err)

	w, err := asdcp.OpenTimedTextWriter(path, info, resourceID, "http://www.smpte-ra.org/schemas/428-7/2010/DCST", source)
	require.NoError(t, err)

	err = w.WriteAncillaryResource([]byte("too-early"), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindState))
}

func TestTimedTextWriterRejectsDuplicateResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timedtext-dup.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	resourceID, err := id.NewUUID(source)
	require.NoError(t, err)

	w, err := asdcp.OpenTimedTextWriter(path, info, resourceID, "http://www.smpte-ra.org/schemas/428-7/2010/DCST", source)
	require.NoError(t, err)

	require.NoError(t, w.WriteTimedTextResource([]byte("<SubtitleReel/>"), nil))

	err = w.WriteTimedTextResource([]byte("<SubtitleReel/>"), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindState))
}
