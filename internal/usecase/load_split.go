package usecase

import (
	"fmt"
	"math/rand/v2"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/manifest"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"go.uber.org/zap"
)

// SplitLoader builds a whole split in memory without the cache. Sequences
// keep their full length, so they are ragged across samples.
type SplitLoader struct {
	manifest *manifest.Store
	builder  *sequence.Builder
	occluder *sequence.Occluder
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewSplitLoader(m *manifest.Store, builder *sequence.Builder, occluder *sequence.Occluder, rng *rand.Rand, logger *zap.Logger) *SplitLoader {
	return &SplitLoader{manifest: m, builder: builder, occluder: occluder, rng: rng, logger: logger}
}

// Load returns the sequences and one-hot labels of split in manifest order.
// Any sample failure is fatal.
func (l *SplitLoader) Load(split entity.Split) ([]entity.Sequence, [][]float32, error) {
	records := l.manifest.Split(split)
	xs := make([]entity.Sequence, 0, len(records))
	ys := make([][]float32, 0, len(records))

	for _, rec := range records {
		paths, err := l.builder.FramePaths(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %s: %w", rec.SampleID, err)
		}
		seq, err := l.builder.Build(paths)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %s: %w", rec.SampleID, err)
		}
		seq, err = l.occluder.Augment(seq, rec.Class, l.rng)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %s: %w", rec.SampleID, err)
		}
		label, err := l.manifest.OneHot(rec.Class)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %s: %w", rec.SampleID, err)
		}
		xs = append(xs, seq)
		ys = append(ys, label)
	}

	l.logger.Info("split loaded", zap.String("split", string(split)), zap.Int("samples", len(xs)))
	return xs, ys, nil
}
