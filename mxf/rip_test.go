package mxf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/mxf"
)

func TestRIPBytesParseRoundTrip(t *testing.T) {
	r := &mxf.RIP{}
	r.Append(1, 0)
	r.Append(1, 65536)
	r.Append(1, 131072)

	encoded := r.Bytes()

	parsed, err := mxf.ParseRIP(encoded)
	require.NoError(t, err)

	require.Len(t, parsed.Entries, 3)
	assert.Equal(t, mxf.RIPEntry{BodySID: 1, PartitionOffset: 0}, parsed.Entries[0])
	assert.Equal(t, mxf.RIPEntry{BodySID: 1, PartitionOffset: 65536}, parsed.Entries[1])
	assert.Equal(t, mxf.RIPEntry{BodySID: 1, PartitionOffset: 131072}, parsed.Entries[2])
}

func TestParseRIPRejectsKeyMismatch(t *testing.T) {
	bad := make([]byte, 20)
	_, err := mxf.ParseRIP(bad)
	assert.Error(t, err)
}

func TestParseRIPRejectsTruncatedBuffer(t *testing.T) {
	_, err := mxf.ParseRIP([]byte{0x01, 0x02})
	assert.Error(t, err)
}
