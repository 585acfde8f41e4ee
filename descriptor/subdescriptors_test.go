package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/codestream/jp2k"
	"github.com/cinecert/asdcplib-sub002/codestream/jxs"
	"github.com/cinecert/asdcplib-sub002/descriptor"
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func TestJPEG2000PictureSubDescriptorRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()

	md := jp2k.Metadata{
		ProgressionOrder:    2,
		Layers:              1,
		DecompositionLevels: 5,
		CodeblockWidth:      6,
		CodeblockHeight:     6,
	}
	jd := descriptor.JPEG2000SubDescriptorFromMetadata(id.UUID{1}, md)

	encoded := jd.ToSet().Bytes(primer)
	_, _, value := splitTriple(t, encoded)

	parsed, err := descriptor.ParseJPEG2000PictureSubDescriptor(value, primer)
	require.NoError(t, err)
	assert.Equal(t, jd.ProgressionOrder, parsed.ProgressionOrder)
	assert.Equal(t, jd.Layers, parsed.Layers)
	assert.Equal(t, jd.DecompositionLevels, parsed.DecompositionLevels)
	assert.Equal(t, jd.CodeblockWidth, parsed.CodeblockWidth)
	assert.Equal(t, jd.CodeblockHeight, parsed.CodeblockHeight)
}

func TestJPEGXSPictureSubDescriptorRoundTrip(t *testing.T) {
	primer := mxf.NewPrimer()

	md := jxs.Metadata{Profile: 1, Level: 2, SliceHeight: 8}
	jd := descriptor.JPEGXSSubDescriptorFromMetadata(id.UUID{2}, md)

	encoded := jd.ToSet().Bytes(primer)
	_, _, value := splitTriple(t, encoded)

	parsed, err := descriptor.ParseJPEGXSPictureSubDescriptor(value, primer)
	require.NoError(t, err)
	assert.Equal(t, jd.Profile, parsed.Profile)
	assert.Equal(t, jd.Level, parsed.Level)
	assert.Equal(t, jd.SliceHeight, parsed.SliceHeight)
}
