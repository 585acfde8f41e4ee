package asdcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinecert/asdcplib-sub002/asdcp"
	"github.com/cinecert/asdcplib-sub002/essence"
)

func TestLabelsDistinguishLabelSets(t *testing.T) {
	kinds := []asdcp.Kind{
		asdcp.KindPictureJP2K,
		asdcp.KindPictureJPEGXS,
		asdcp.KindAudioPCM,
		asdcp.KindTimedText,
		asdcp.KindDCData,
		asdcp.KindPHDR,
	}

	for _, kind := range kinds {
		smpteOP, smpteContainer, smpteCodec := asdcp.Labels(kind, essence.LabelSetSMPTE)
		interopOP, interopContainer, interopCodec := asdcp.Labels(kind, essence.LabelSetInterop)

		assert.False(t, smpteOP.IsZero())
		assert.False(t, smpteContainer.IsZero())
		assert.False(t, smpteCodec.IsZero())
		assert.False(t, interopContainer.IsZero())
		assert.False(t, interopCodec.IsZero())

		assert.NotEqual(t, smpteContainer, interopContainer)
		assert.NotEqual(t, smpteCodec, interopCodec)
	}
}

func TestLabelsDistinguishKinds(t *testing.T) {
	_, pictureContainer, _ := asdcp.Labels(asdcp.KindPictureJP2K, essence.LabelSetSMPTE)
	_, audioContainer, _ := asdcp.Labels(asdcp.KindAudioPCM, essence.LabelSetSMPTE)
	_, dcDataContainer, _ := asdcp.Labels(asdcp.KindDCData, essence.LabelSetSMPTE)
	_, phdrContainer, _ := asdcp.Labels(asdcp.KindPHDR, essence.LabelSetSMPTE)

	assert.NotEqual(t, pictureContainer, audioContainer)
	assert.NotEqual(t, dcDataContainer, phdrContainer)
}
