package mxf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/mxf"
)

func buildMinimalPreface() *mxf.Preface {
	clip := &mxf.SourceClip{
		InstanceUID:   id.UUID{1},
		StartPosition: 0,
		SourcePackage: id.NewUMID([16]byte{2}),
		SourceTrackID: 1,
	}
	seq := &mxf.Sequence{
		InstanceUID: id.UUID{3},
		Duration:    24,
		Clips:       []*mxf.SourceClip{clip},
	}
	sourceTrack := &mxf.Track{
		InstanceUID: id.UUID{4},
		TrackID:     1,
		EditRate:    id.NewRational(24, 1),
		Sequence:    seq,
	}
	descriptorRef := id.UUID{5}
	source := &mxf.Package{
		Key:           mxf.SourcePackageKey,
		InstanceUID:   id.UUID{6},
		PackageUID:    id.NewUMID([16]byte{7}),
		Tracks:        []*mxf.Track{sourceTrack},
		DescriptorRef: &descriptorRef,
	}

	materialSeq := &mxf.Sequence{
		InstanceUID: id.UUID{12},
		Duration:    24,
		Clips:       []*mxf.SourceClip{clip},
	}
	materialTrack := &mxf.Track{
		InstanceUID: id.UUID{13},
		TrackID:     1,
		EditRate:    id.NewRational(24, 1),
		Sequence:    materialSeq,
	}
	material := &mxf.Package{
		Key:         mxf.MaterialPackageKey,
		InstanceUID: id.UUID{8},
		PackageUID:  id.NewUMID([16]byte{9}),
		Tracks:      []*mxf.Track{materialTrack},
	}
	cs := &mxf.ContentStorage{
		InstanceUID: id.UUID{10},
		Packages:    []*mxf.Package{material, source},
	}

	return &mxf.Preface{InstanceUID: id.UUID{11}, ContentStorage: cs}
}

func TestObjectGraphOrdering(t *testing.T) {
	pf := buildMinimalPreface()
	sets := pf.ObjectGraph()

	require.Len(t, sets, 1+1+2+2+2+2) // preface, storage, 2 packages, 2 tracks, 2 sequences, 2 clips

	assert.True(t, sets[0].Key.Equal(mxf.PrefaceKey))
	assert.True(t, sets[1].Key.Equal(mxf.ContentStorageKey))
	assert.True(t, sets[2].Key.Equal(mxf.MaterialPackageKey))
	assert.True(t, sets[3].Key.Equal(mxf.SourcePackageKey))
	assert.True(t, sets[4].Key.Equal(mxf.TimelineTrackKey))
	assert.True(t, sets[5].Key.Equal(mxf.TimelineTrackKey))
	assert.True(t, sets[6].Key.Equal(mxf.SequenceKey))
	assert.True(t, sets[7].Key.Equal(mxf.SequenceKey))
	assert.True(t, sets[8].Key.Equal(mxf.SourceClipKey))
	assert.True(t, sets[9].Key.Equal(mxf.SourceClipKey))
}

func TestWriteHeaderMetadataIncludesPrimerAndAllSets(t *testing.T) {
	pf := buildMinimalPreface()
	primer := mxf.NewPrimer()

	out, err := mxf.WriteHeaderMetadata(pf, primer)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	key, _, err := parseLeadingUL(out)
	require.NoError(t, err)
	assert.True(t, key.Equal(mxf.PrimerPackKey))

	// every object-graph property, not just InstanceUID, must resolve
	// through the primer (spec.md §3).
	_, ok := primer.Resolve(0x4401) // tagPackageUID
	assert.True(t, ok, "tagPackageUID must be registered with the primer")
	_, ok = primer.Resolve(0x4B01) // tagTrackEditRate
	assert.True(t, ok, "tagTrackEditRate must be registered with the primer")
	_, ok = primer.Resolve(0x1201) // tagSourceClipStartPos
	assert.True(t, ok, "tagSourceClipStartPos must be registered with the primer")
}

func parseLeadingUL(data []byte) (id.UL, int, error) {
	u, err := id.ParseUL(data[:id.ULSize])
	return u, id.ULSize, err
}
