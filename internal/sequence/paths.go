package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// FrameIndexWidth is the zero-padded width of the frame number in file names.
const FrameIndexWidth = 4

// FrameFileName returns <sample_id>-<index>.<ext> with a 1-based, zero-padded index.
func FrameFileName(sampleID string, index int, ext string) string {
	return fmt.Sprintf("%s-%0*d.%s", sampleID, FrameIndexWidth, index, ext)
}

// FrameDir is <frame_root>/<split>/<class>.
func FrameDir(frameRoot string, split entity.Split, class string) string {
	return filepath.Join(frameRoot, string(split), class)
}

// FrameIndex parses the numeric suffix of a frame file belonging to sampleID.
func FrameIndex(name, sampleID, ext string) (int, bool) {
	rest, ok := strings.CutPrefix(name, sampleID+"-")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, "."+ext)
	if !ok || digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FramePaths lists a sample's frame images sorted by frame index ascending.
func FramePaths(frameRoot, ext string, rec entity.SampleRecord) ([]string, error) {
	dir := FrameDir(frameRoot, rec.Split, rec.Class)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir %s: %w", dir, err)
	}

	type indexed struct {
		index int
		path  string
	}
	var frames []indexed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx, ok := FrameIndex(e.Name(), rec.SampleID, ext)
		if !ok {
			continue
		}
		frames = append(frames, indexed{index: idx, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].index < frames[j].index })

	paths := make([]string, len(frames))
	for i, f := range frames {
		paths[i] = f.path
	}
	return paths, nil
}
