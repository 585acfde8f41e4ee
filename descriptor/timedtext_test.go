package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func TestTimedTextDescriptorRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()

	td := descriptor.TimedTextDescriptor{
		FileDescriptor: fileDescFixture(),
		ResourceID:     id.UUID{9, 9},
		NamespaceURI:   "http://www.smpte-ra.org/schemas/428-7/2014/DCST",
	}

	encoded := td.ToSet().Bytes(primer)
	_, _, value := splitTriple(t, encoded)

	parsed, err := descriptor.ParseTimedTextDescriptor(value, primer)
	require.NoError(t, err)
	assert.Equal(t, td.ResourceID, parsed.ResourceID)
	assert.Equal(t, td.NamespaceURI, parsed.NamespaceURI)
}

func TestDataEssenceDescriptorRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()

	dd := descriptor.DataEssenceDescriptor{
		FileDescriptor:    fileDescFixture(),
		DataEssenceCoding: id.MustParseHexUL("060e2b34040101010d01030102130100"),
	}

	encoded := dd.ToSet().Bytes(primer)
	_, _, value := splitTriple(t, encoded)

	parsed, err := descriptor.ParseDataEssenceDescriptor(value, primer)
	require.NoError(t, err)
	assert.True(t, dd.DataEssenceCoding.Equal(parsed.DataEssenceCoding))
}
