package asdcp_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/asdcp"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/id"
)

func TestDataWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	w, err := asdcp.OpenDataWriter(path, info, id.UL{}, source)
	require.NoError(t, err)

	payload := []byte("ancillary-data-payload")
	require.NoError(t, w.WriteFrame(payload, nil))

	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	_, essenceContainer, _ := asdcp.Labels(asdcp.KindDCData, essence.LabelSetSMPTE)

	r, err := asdcp.OpenDataReader(path, essenceContainer)
	require.NoError(t, err)

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	got, err := r.ReadFrame(0, buf, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.Equal(t, uint64(1), r.Duration())
	require.NoError(t, r.Close())
}

func TestPHDRWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phdr.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	w, err := asdcp.OpenPHDRWriter(path, info, id.UL{}, source)
	require.NoError(t, err)

	payload := []byte("phdr-passthrough-payload")
	require.NoError(t, w.WriteFrame(payload, nil))

	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	_, essenceContainer, _ := asdcp.Labels(asdcp.KindPHDR, essence.LabelSetSMPTE)

	r, err := asdcp.OpenDataReader(path, essenceContainer)
	require.NoError(t, err)

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	got, err := r.ReadFrame(0, buf, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	desc, err := r.Descriptor()
	require.NoError(t, err)
	_, _, codecUL := asdcp.Labels(asdcp.KindPHDR, essence.LabelSetSMPTE)
	assert.Equal(t, codecUL, desc.DataEssenceCoding)

	require.NoError(t, r.Close())
}

func TestATMOSWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atmos.mxf")

	source := testRNG(t)
	info := essence.WriterInfo{LabelSet: essence.LabelSetSMPTE}

	w, err := asdcp.OpenATMOSWriter(path, info, id.UL{}, source)
	require.NoError(t, err)

	payload := []byte("atmos-object-audio-metadata-payload")
	require.NoError(t, w.WriteFrame(payload, nil))

	require.NoError(t, w.Finalize())
	require.NoError(t, w.Close())

	_, essenceContainer, _ := asdcp.Labels(asdcp.KindATMOS, essence.LabelSetSMPTE)

	r, err := asdcp.OpenDataReader(path, essenceContainer)
	require.NoError(t, err)

	buf := essence.NewFrameBuffer()
	defer buf.Release()
	got, err := r.ReadFrame(0, buf, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, r.Close())
}
