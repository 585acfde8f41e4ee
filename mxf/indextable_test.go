package mxf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func TestIndexTableSegmentBytesParseRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()

	seg := &mxf.IndexTableSegment{
		InstanceUID:   id.UUID{7, 7, 7},
		IndexEditRate: id.NewRational(24, 1),
		IndexDuration: 3,
		IndexSID:      1,
		BodySID:       2,
		EditUnitSize:  0, // variable-size essence
	}
	seg.Append(mxf.IndexEntry{TemporalOffset: 0, KeyFrameOffset: 0, Flags: 0x80, StreamOffset: 0})
	seg.Append(mxf.IndexEntry{TemporalOffset: 1, KeyFrameOffset: -1, Flags: 0x00, StreamOffset: 1024})
	seg.Append(mxf.IndexEntry{TemporalOffset: 2, KeyFrameOffset: -2, Flags: 0x00, StreamOffset: 2048})

	encoded := seg.Bytes(primer)

	key, _, value := splitTripleLong(t, encoded)
	assert.True(t, key.Equal(mxf.IndexTableSegmentKey))

	parsed, err := mxf.ParseIndexTableSegment(value, primer)
	require.NoError(t, err)

	assert.Equal(t, seg.InstanceUID, parsed.InstanceUID)
	assert.True(t, seg.IndexEditRate.Equal(parsed.IndexEditRate))
	assert.Equal(t, seg.IndexDuration, parsed.IndexDuration)
	assert.Equal(t, seg.IndexSID, parsed.IndexSID)
	assert.Equal(t, seg.BodySID, parsed.BodySID)
	assert.Equal(t, seg.EditUnitSize, parsed.EditUnitSize)
	require.Len(t, parsed.Entries, 3)
	assert.Equal(t, seg.Entries, parsed.Entries)
}
