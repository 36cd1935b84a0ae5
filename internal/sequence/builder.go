package sequence

import (
	"errors"
	"fmt"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/port"
)

// Builder turns frame image paths into normalized sequences.
//
// Two length policies exist and each call site picks one explicitly:
// Build keeps every frame, BuildTruncated keeps the leading MinSeqLength
// frames so cached arrays share one shape.
type Builder struct {
	loader       port.ImageLoader
	frameRoot    string
	frameExt     string
	height       int
	width        int
	minSeqLength int
}

type BuilderConfig struct {
	FrameRoot    string
	FrameExt     string
	Height       int
	Width        int
	MinSeqLength int
}

func NewBuilder(loader port.ImageLoader, cfg BuilderConfig) *Builder {
	return &Builder{
		loader:       loader,
		frameRoot:    cfg.FrameRoot,
		frameExt:     cfg.FrameExt,
		height:       cfg.Height,
		width:        cfg.Width,
		minSeqLength: cfg.MinSeqLength,
	}
}

func (b *Builder) FrameDir(rec entity.SampleRecord) string {
	return FrameDir(b.frameRoot, rec.Split, rec.Class)
}

func (b *Builder) FramePaths(rec entity.SampleRecord) ([]string, error) {
	return FramePaths(b.frameRoot, b.frameExt, rec)
}

// Build loads every path in order.
func (b *Builder) Build(paths []string) (entity.Sequence, error) {
	seq := make(entity.Sequence, 0, len(paths))
	for _, p := range paths {
		frame, err := b.loader.Load(p, b.height, b.width)
		if err != nil {
			var fle *entity.FrameLoadError
			if errors.As(err, &fle) {
				return nil, err
			}
			return nil, &entity.FrameLoadError{Path: p, Err: err}
		}
		seq = append(seq, frame)
	}
	return seq, nil
}

// BuildTruncated loads only the leading MinSeqLength paths. Fewer paths than
// that is ErrSequenceTooShort.
func (b *Builder) BuildTruncated(paths []string) (entity.Sequence, error) {
	if len(paths) < b.minSeqLength {
		return nil, fmt.Errorf("%w: %d frames, need %d", entity.ErrSequenceTooShort, len(paths), b.minSeqLength)
	}
	return b.Build(paths[:b.minSeqLength])
}
