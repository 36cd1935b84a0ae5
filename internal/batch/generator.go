package batch

import (
	"fmt"
	"math/rand/v2"

	"github.com/fiapx/fiapx-dataset-service/internal/cache"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/metrics"
)

// ArchiveReader loads one cached archive as raw tensors.
type ArchiveReader interface {
	ReadArrays(path string) (cache.Array, cache.Array, error)
}

// Generator serves fixed-size batches from one split's cached archives.
//
// Within an epoch it hands out Len() batches from a shuffled file order.
// Calling NextBatch after that returns ErrEpochExhausted until OnEpochEnd
// reshuffles; a trailing partial batch is never emitted.
type Generator struct {
	reader    ArchiveReader
	split     entity.Split
	files     []string
	batchSize int
	cursor    int
	rng       *rand.Rand
}

// NewGenerator shuffles files with rng and positions the cursor at the first batch.
func NewGenerator(reader ArchiveReader, split entity.Split, files []string, batchSize int, rng *rand.Rand) (*Generator, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	g := &Generator{
		reader:    reader,
		split:     split,
		files:     append([]string(nil), files...),
		batchSize: batchSize,
		rng:       rng,
	}
	g.OnEpochEnd()
	return g, nil
}

// NewFromStore discovers the split's archives in store.
func NewFromStore(store *cache.Store, split entity.Split, batchSize int, rng *rand.Rand) (*Generator, error) {
	files, err := store.List(split)
	if err != nil {
		return nil, err
	}
	return NewGenerator(store, split, files, batchSize, rng)
}

// Len is floor(N / batch size).
func (g *Generator) Len() int {
	return len(g.files) / g.batchSize
}

// Cursor is the index of the next batch within the epoch.
func (g *Generator) Cursor() int { return g.cursor }

// Order returns the current epoch's file order.
func (g *Generator) Order() []string {
	return append([]string(nil), g.files...)
}

// NextBatch stacks the archives at [cursor*size, (cursor+1)*size) of the
// shuffled order and advances the cursor. On error the cursor stays put.
func (g *Generator) NextBatch() (entity.Batch, error) {
	if g.cursor >= g.Len() {
		return entity.Batch{}, fmt.Errorf("%w: %d of %d batches served", entity.ErrEpochExhausted, g.cursor, g.Len())
	}

	start := g.cursor * g.batchSize
	var (
		b              entity.Batch
		xInner, yInner []int
	)
	for i, path := range g.files[start : start+g.batchSize] {
		x, y, err := g.reader.ReadArrays(path)
		if err != nil {
			return entity.Batch{}, err
		}
		if i == 0 {
			xInner, yInner = x.Shape, y.Shape
			b.X = make([]float32, 0, len(x.Data)*g.batchSize)
			b.Y = make([]float32, 0, len(y.Data)*g.batchSize)
		} else if !equalShape(xInner, x.Shape) || !equalShape(yInner, y.Shape) {
			return entity.Batch{}, fmt.Errorf("%w: %s has x=%v y=%v, batch has x=%v y=%v",
				entity.ErrShapeMismatch, path, x.Shape, y.Shape, xInner, yInner)
		}
		b.X = append(b.X, x.Data...)
		b.Y = append(b.Y, y.Data...)
	}
	b.XShape = append([]int{g.batchSize}, xInner...)
	b.YShape = append([]int{g.batchSize}, yInner...)

	g.cursor++
	metrics.BatchesServedTotal.WithLabelValues(string(g.split)).Inc()
	return b, nil
}

// OnEpochEnd reshuffles every file uniformly and rewinds the cursor. The
// caller invokes it once per epoch boundary.
func (g *Generator) OnEpochEnd() {
	g.rng.Shuffle(len(g.files), func(i, j int) {
		g.files[i], g.files[j] = g.files[j], g.files[i]
	})
	g.cursor = 0
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
