package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Store owns the manifest file and the records loaded from it. It is not
// safe for concurrent use; the lock only guards the file against a second
// writer process.
type Store struct {
	path    string
	minLen  int
	maxLen  int
	logger  *zap.Logger
	records []entity.SampleRecord
	vocab   Vocabulary
}

type StoreConfig struct {
	Path         string
	MinSeqLength int
	MaxSeqLength int
}

func NewStore(cfg StoreConfig, logger *zap.Logger) *Store {
	return &Store{
		path:   cfg.Path,
		minLen: cfg.MinSeqLength,
		maxLen: cfg.MaxSeqLength,
		logger: logger,
		vocab:  NewVocabulary(nil),
	}
}

func (s *Store) Path() string { return s.path }

// Load reads every record from the manifest file and freezes a new class
// vocabulary from them.
func (s *Store) Load() error {
	records, err := s.readFile()
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", entity.ErrManifestMissing, s.path)
	}
	if err != nil {
		return err
	}

	s.records = records
	s.vocab = NewVocabulary(records)

	s.logger.Info("manifest loaded",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
		zap.Int("classes", s.vocab.Len()),
	)
	return nil
}

// Records returns every loaded record, including those outside the length bounds.
func (s *Store) Records() []entity.SampleRecord {
	out := make([]entity.SampleRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Classes() []string {
	return s.vocab.Classes()
}

func (s *Store) Vocabulary() Vocabulary {
	return s.vocab
}

// Filtered returns the records with min <= frame_count <= max, in manifest order.
func (s *Store) Filtered() []entity.SampleRecord {
	out := make([]entity.SampleRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.InLengthBounds(s.minLen, s.maxLen) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Split(split entity.Split) []entity.SampleRecord {
	var out []entity.SampleRecord
	for _, r := range s.Filtered() {
		if r.Split == split {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) OneHot(class string) ([]float32, error) {
	return s.vocab.OneHot(class)
}

// AppendAndPersist merges records into the rows currently on disk, replacing
// any record with the same split, class and sample id, and rewrites the
// manifest file. The in-memory records become the merged set; the vocabulary
// is left untouched until the next Load.
func (s *Store) AppendAndPersist(records []entity.SampleRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock manifest: %w", err)
	}
	defer lock.Unlock()

	existing, err := s.readFile()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	merged := mergeRecords(existing, records)
	if err := writeAtomic(s.path, merged); err != nil {
		return err
	}
	s.records = merged

	s.logger.Info("manifest persisted",
		zap.String("path", s.path),
		zap.Int("appended", len(records)),
		zap.Int("records", len(merged)),
	)
	return nil
}

// readFile decodes the manifest on disk. A missing file is reported as
// fs.ErrNotExist.
func (s *Store) readFile() ([]entity.SampleRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	records, err := decodeRecords(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return records, nil
}

func mergeRecords(existing, added []entity.SampleRecord) []entity.SampleRecord {
	out := make([]entity.SampleRecord, 0, len(existing)+len(added))
	pos := make(map[entity.SampleKey]int, len(existing)+len(added))
	for _, r := range append(append([]entity.SampleRecord{}, existing...), added...) {
		if i, ok := pos[r.Key()]; ok {
			out[i] = r
			continue
		}
		pos[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}

func writeAtomic(path string, records []entity.SampleRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := encodeRecords(w, records); err != nil {
		tmp.Close()
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
