package entity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoPath(t *testing.T) {
	p := filepath.Join("data", "videos", "train", "classA", "v_001.avi")

	vp, err := ParseVideoPath(p)
	require.NoError(t, err)
	assert.Equal(t, SplitTrain, vp.Split)
	assert.Equal(t, "classA", vp.Class)
	assert.Equal(t, "v_001", vp.SampleID)
	assert.Equal(t, "v_001.avi", vp.Filename)

	rec := vp.Record(42)
	assert.Equal(t, SampleRecord{Split: SplitTrain, Class: "classA", SampleID: "v_001", FrameCount: 42}, rec)
}

func TestParseVideoPathStemStopsAtFirstDot(t *testing.T) {
	vp, err := ParseVideoPath(filepath.Join("test", "classB", "clip.part1.avi"))
	require.NoError(t, err)
	assert.Equal(t, "clip", vp.SampleID)
	assert.Equal(t, SplitTest, vp.Split)
}

func TestParseVideoPathRejectsNonConforming(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"bare file", "clip.avi"},
		{"no split level", filepath.Join("classA", "clip.avi")},
		{"unknown split", filepath.Join("videos", "validation", "classA", "clip.avi")},
		{"empty stem", filepath.Join("train", "classA", ".avi")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVideoPath(tt.path)
			assert.ErrorIs(t, err, ErrInvalidVideoPath)
		})
	}
}

func TestParseSplit(t *testing.T) {
	s, err := ParseSplit("test")
	require.NoError(t, err)
	assert.Equal(t, SplitTest, s)

	_, err = ParseSplit("TRAIN")
	assert.ErrorIs(t, err, ErrInvalidSplit)
}
