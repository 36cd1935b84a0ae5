package cache

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// ArchiveExt is the file extension of cached sample archives.
const ArchiveExt = ".seqz"

// Store reads and writes cached sample archives under <root>/<split>/.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

func (s *Store) Dir(split entity.Split) string {
	return filepath.Join(s.root, string(split))
}

func (s *Store) Path(split entity.Split, sampleID string) string {
	return filepath.Join(s.Dir(split), sampleID+ArchiveExt)
}

// Write replaces the archive for sampleID with (seq, label) and returns its path.
func (s *Store) Write(sampleID string, split entity.Split, seq entity.Sequence, label []float32) (string, error) {
	if !seq.Uniform() {
		return "", fmt.Errorf("%w: sample %s has frames of differing shape", entity.ErrShapeMismatch, sampleID)
	}

	dir := s.Dir(split)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	path := s.Path(split, sampleID)
	tmp, err := os.CreateTemp(dir, sampleID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	x := Array{Shape: seq.Shape(), Data: seq.Flatten()}
	y := Array{Shape: []int{len(label)}, Data: label}
	if err := encodeArchive(w, x, y); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write archive %s: %w", sampleID, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flush archive %s: %w", sampleID, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive %s: %w", sampleID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace archive %s: %w", sampleID, err)
	}
	return path, nil
}

// ReadArrays loads the raw x and y tensors of an archive.
func (s *Store) ReadArrays(path string) (Array, Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("%w: %s: %v", entity.ErrCacheCorrupt, path, err)
	}
	defer f.Close()

	x, y, err := decodeArchive(bufio.NewReader(f))
	if err != nil {
		return Array{}, Array{}, fmt.Errorf("%w: %s: %v", entity.ErrCacheCorrupt, path, err)
	}
	if len(x.Shape) != 4 || len(y.Shape) != 1 {
		return Array{}, Array{}, fmt.Errorf("%w: %s: unexpected ranks x=%v y=%v", entity.ErrCacheCorrupt, path, x.Shape, y.Shape)
	}
	return x, y, nil
}

// Read loads an archive back into a sequence and its one-hot label.
func (s *Store) Read(path string) (entity.Sequence, []float32, error) {
	x, y, err := s.ReadArrays(path)
	if err != nil {
		return nil, nil, err
	}

	t, h, w, c := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	step := h * w * c
	seq := make(entity.Sequence, t)
	for i := range seq {
		seq[i] = entity.Frame{Height: h, Width: w, Channels: c, Pix: x.Data[i*step : (i+1)*step : (i+1)*step]}
	}
	return seq, y.Data, nil
}

// List returns the archive paths of a split in lexical order. A split that
// was never cached yields an empty list.
func (s *Store) List(split entity.Split) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(split))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArchiveExt) {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir(split), e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
