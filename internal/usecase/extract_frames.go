package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/port"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/metrics"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrVideoOpen marks a video the decoder could not open.
var ErrVideoOpen = errors.New("open video")

// FrameExtractor decodes videos laid out as <root>/<split>/<class>/<id><ext>
// into numbered frame images under <frame_root>/<split>/<class>/.
type FrameExtractor struct {
	decoder   port.VideoDecoder
	writer    port.FrameWriter
	frameRoot string
	frameExt  string
	videoExt  string
	progress  io.Writer
	logger    *zap.Logger
}

type ExtractorConfig struct {
	FrameRoot string
	FrameExt  string
	VideoExt  string
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
}

func NewFrameExtractor(decoder port.VideoDecoder, writer port.FrameWriter, logger *zap.Logger, cfg ExtractorConfig) *FrameExtractor {
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &FrameExtractor{
		decoder:   decoder,
		writer:    writer,
		frameRoot: cfg.FrameRoot,
		frameExt:  cfg.FrameExt,
		videoExt:  cfg.VideoExt,
		progress:  progress,
		logger:    logger,
	}
}

// Extract writes every decodable frame of videoPath and returns how many were
// written. A read failure mid-stream ends extraction without error; the count
// covers the frames written before it. Frames left over from an earlier
// extraction of the same sample are removed first.
func (e *FrameExtractor) Extract(ctx context.Context, videoPath string) (int, error) {
	vp, err := entity.ParseVideoPath(videoPath)
	if err != nil {
		return 0, err
	}

	ctx, span := otel.Tracer("usecase").Start(ctx, "FrameExtractor.Extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("sample.id", vp.SampleID),
		attribute.String("sample.class", vp.Class),
	)

	log := e.logger.With(zap.String("sample_id", vp.SampleID), zap.String("class", vp.Class), zap.String("split", string(vp.Split)))

	outDir := sequence.FrameDir(e.frameRoot, vp.Split, vp.Class)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("create frame dir: %w", err)
	}
	if err := e.removeStaleFrames(outDir, vp.SampleID); err != nil {
		return 0, err
	}

	reader, err := e.decoder.Open(ctx, videoPath)
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrVideoOpen, videoPath, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn("decoder exited with error", zap.Error(err))
		}
	}()

	count := 0
	for {
		img, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("frame read failed, keeping partial extraction", zap.Int("frames", count), zap.Error(err))
			break
		}

		path := filepath.Join(outDir, sequence.FrameFileName(vp.SampleID, count+1, e.frameExt))
		if err := e.writer.WriteFrame(path, img); err != nil {
			return count, fmt.Errorf("write frame %d: %w", count+1, err)
		}
		count++
	}

	metrics.FramesExtractedTotal.Add(float64(count))
	metrics.VideosExtractedTotal.WithLabelValues(string(vp.Split)).Inc()
	log.Debug("video extracted", zap.Int("frames", count))
	return count, nil
}

func (e *FrameExtractor) removeStaleFrames(dir, sampleID string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read frame dir: %w", err)
	}
	for _, entry := range entries {
		if _, ok := sequence.FrameIndex(entry.Name(), sampleID, e.frameExt); !ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale frame: %w", err)
		}
	}
	return nil
}

// ScanAndExtract extracts every video under videoRoot/{train,test}/<class>/
// and returns one record per video. Videos are visited in directory listing
// order. A video that cannot be opened is recorded with zero frames so the
// length filter drops it; any other failure aborts the scan.
func (e *FrameExtractor) ScanAndExtract(ctx context.Context, videoRoot string) ([]entity.SampleRecord, error) {
	start := time.Now()
	ctx, span := otel.Tracer("usecase").Start(ctx, "FrameExtractor.ScanAndExtract")
	defer span.End()

	for _, split := range entity.Splits {
		if err := os.MkdirAll(filepath.Join(e.frameRoot, string(split)), 0755); err != nil {
			return nil, fmt.Errorf("create frame root: %w", err)
		}
	}

	videos, err := e.discover(videoRoot)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("videos", len(videos)))
	e.logger.Info("videos discovered", zap.String("root", videoRoot), zap.Int("count", len(videos)))

	bar := progressbar.NewOptions(len(videos),
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionSetDescription("extracting frames"),
		progressbar.OptionShowCount(),
	)

	records := make([]entity.SampleRecord, 0, len(videos))
	for _, vp := range videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		count, err := e.Extract(ctx, vp.Path)
		if err != nil {
			if !errors.Is(err, ErrVideoOpen) {
				return nil, fmt.Errorf("extract %s: %w", vp.Path, err)
			}
			e.logger.Warn("video extraction failed",
				zap.String("video", vp.Path),
				zap.Int("frames", count),
				zap.Error(err),
			)
		}
		records = append(records, vp.Record(count))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	return records, nil
}

func (e *FrameExtractor) discover(videoRoot string) ([]entity.VideoPath, error) {
	var videos []entity.VideoPath
	for _, split := range entity.Splits {
		splitDir := filepath.Join(videoRoot, string(split))
		classes, err := os.ReadDir(splitDir)
		if errors.Is(err, os.ErrNotExist) {
			e.logger.Debug("split directory missing", zap.String("dir", splitDir))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", splitDir, err)
		}

		for _, class := range classes {
			if !class.IsDir() {
				continue
			}
			classDir := filepath.Join(splitDir, class.Name())
			files, err := os.ReadDir(classDir)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", classDir, err)
			}
			for _, f := range files {
				if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), e.videoExt) {
					continue
				}
				vp, err := entity.ParseVideoPath(filepath.Join(classDir, f.Name()))
				if err != nil {
					return nil, err
				}
				videos = append(videos, vp)
			}
		}
	}
	return videos, nil
}
