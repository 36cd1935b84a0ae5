package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

// VideoPath is the identity of a source video decomposed from
// <root>/<split>/<class>/<sample_id>.<ext>.
type VideoPath struct {
	Path     string
	Split    Split
	Class    string
	SampleID string
	Filename string
}

// ParseVideoPath decomposes a video path. The file stem (up to the first dot)
// is the sample id, the parent directory the class and the grandparent the
// split, which must be train or test.
func ParseVideoPath(path string) (VideoPath, error) {
	clean := filepath.Clean(path)
	filename := filepath.Base(clean)
	classDir := filepath.Dir(clean)
	class := filepath.Base(classDir)
	splitName := filepath.Base(filepath.Dir(classDir))

	sampleID, _, _ := strings.Cut(filename, ".")
	if sampleID == "" {
		return VideoPath{}, fmt.Errorf("%w: %q has no sample id", ErrInvalidVideoPath, path)
	}
	if class == "" || class == "." || class == string(filepath.Separator) {
		return VideoPath{}, fmt.Errorf("%w: %q has no class directory", ErrInvalidVideoPath, path)
	}
	split, err := ParseSplit(splitName)
	if err != nil {
		return VideoPath{}, fmt.Errorf("%w: %q: %v", ErrInvalidVideoPath, path, err)
	}

	return VideoPath{
		Path:     path,
		Split:    split,
		Class:    class,
		SampleID: sampleID,
		Filename: filename,
	}, nil
}

func (v VideoPath) Record(frameCount int) SampleRecord {
	return SampleRecord{Split: v.Split, Class: v.Class, SampleID: v.SampleID, FrameCount: frameCount}
}
