package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/fiapx/fiapx-dataset-service/internal/cache"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/port"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/metrics"
	"github.com/fiapx/fiapx-dataset-service/internal/manifest"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CacheBuilder writes one archive per manifest sample of a split.
//
// Samples whose frames cannot be loaded, or that have fewer frame files than
// the minimum sequence length, are skipped and reported; every other failure
// aborts the run.
type CacheBuilder struct {
	manifest *manifest.Store
	builder  *sequence.Builder
	occluder *sequence.Occluder
	store    *cache.Store
	rng      *rand.Rand
	mirror   port.ArchiveMirror
	ledger   port.RunLedger
	events   port.EventPublisher
	progress io.Writer
	logger   *zap.Logger
}

// CacheBuilderDeps holds the optional collaborators; nil fields are disabled.
type CacheBuilderDeps struct {
	Mirror   port.ArchiveMirror
	Ledger   port.RunLedger
	Events   port.EventPublisher
	Progress io.Writer
}

func NewCacheBuilder(
	m *manifest.Store,
	builder *sequence.Builder,
	occluder *sequence.Occluder,
	store *cache.Store,
	rng *rand.Rand,
	logger *zap.Logger,
	deps CacheBuilderDeps,
) *CacheBuilder {
	b := &CacheBuilder{
		manifest: m,
		builder:  builder,
		occluder: occluder,
		store:    store,
		rng:      rng,
		mirror:   deps.Mirror,
		ledger:   deps.Ledger,
		events:   deps.Events,
		progress: deps.Progress,
		logger:   logger,
	}
	if b.mirror == nil {
		b.mirror = nopMirror{}
	}
	if b.ledger == nil {
		b.ledger = nopLedger{}
	}
	if b.events == nil {
		b.events = nopEvents{}
	}
	if b.progress == nil {
		b.progress = io.Discard
	}
	return b
}

// BuildAll caches every filtered sample of split. The returned run lists the
// skipped samples; it is returned alongside the error when the run aborts.
func (b *CacheBuilder) BuildAll(ctx context.Context, split entity.Split) (*entity.BuildRun, error) {
	start := time.Now()
	ctx, span := otel.Tracer("usecase").Start(ctx, "CacheBuilder.BuildAll")
	defer span.End()

	records := b.manifest.Split(split)
	run := entity.NewBuildRun(split, len(records))
	span.SetAttributes(
		attribute.String("run.id", run.ID.String()),
		attribute.String("run.split", string(split)),
		attribute.Int("run.total", run.Total),
	)

	log := b.logger.With(zap.String("run_id", run.ID.String()), zap.String("split", string(split)))
	log.Info("cache build started", zap.Int("samples", run.Total), zap.String("cache_dir", b.store.Dir(split)))

	if err := b.ledger.StartRun(ctx, run); err != nil {
		return run, b.fail(ctx, run, log, fmt.Errorf("start run: %w", err))
	}

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(b.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("caching %s", split)),
		progressbar.OptionShowCount(),
	)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return run, b.fail(ctx, run, log, err)
		}

		err := b.cacheSample(ctx, rec)
		switch {
		case err == nil:
			run.RecordWritten()
			metrics.SamplesCachedTotal.WithLabelValues(string(split), "written").Inc()
		case skippable(err):
			skip := entity.SkippedSample{SampleID: rec.SampleID, Class: rec.Class, Reason: err.Error()}
			run.RecordSkipped(skip)
			metrics.SamplesCachedTotal.WithLabelValues(string(split), "skipped").Inc()
			log.Warn("sample skipped",
				zap.String("sample_id", rec.SampleID),
				zap.String("class", rec.Class),
				zap.Error(err),
			)
			if err := b.ledger.RecordSkip(ctx, run, skip); err != nil {
				log.Warn("failed to record skipped sample", zap.Error(err))
			}
		default:
			return run, b.fail(ctx, run, log, fmt.Errorf("sample %s: %w", rec.SampleID, err))
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	run.MarkCompleted()
	if err := b.ledger.FinishRun(ctx, run); err != nil {
		log.Warn("failed to finish run in ledger", zap.Error(err))
	}
	b.publish(ctx, run, log)

	metrics.StageDuration.WithLabelValues("cache").Observe(time.Since(start).Seconds())
	log.Info("cache build completed",
		zap.Int("written", run.Written),
		zap.Int("skipped", len(run.Skipped)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return run, nil
}

// cacheSample builds the truncated, augmented sequence for rec and writes it.
func (b *CacheBuilder) cacheSample(ctx context.Context, rec entity.SampleRecord) error {
	paths, err := b.builder.FramePaths(rec)
	if err != nil {
		return &entity.FrameLoadError{Path: b.builder.FrameDir(rec), Err: err}
	}
	seq, err := b.builder.BuildTruncated(paths)
	if err != nil {
		return err
	}
	seq, err = b.occluder.Augment(seq, rec.Class, b.rng)
	if err != nil {
		return err
	}
	label, err := b.manifest.OneHot(rec.Class)
	if err != nil {
		return err
	}
	path, err := b.store.Write(rec.SampleID, rec.Split, seq, label)
	if err != nil {
		return err
	}
	if err := b.mirror.MirrorArchive(ctx, rec.Split, path); err != nil {
		return fmt.Errorf("mirror archive: %w", err)
	}
	return nil
}

func skippable(err error) bool {
	return errors.Is(err, entity.ErrFrameLoad) || errors.Is(err, entity.ErrSequenceTooShort)
}

func (b *CacheBuilder) fail(ctx context.Context, run *entity.BuildRun, log *zap.Logger, cause error) error {
	run.MarkFailed(cause.Error())
	log.Error("cache build aborted", zap.Int("written", run.Written), zap.Error(cause))

	// the run context may be the reason for failure
	finishCtx := context.WithoutCancel(ctx)
	if err := b.ledger.FinishRun(finishCtx, run); err != nil {
		log.Warn("failed to finish run in ledger", zap.Error(err))
	}
	b.publish(finishCtx, run, log)
	return cause
}

func (b *CacheBuilder) publish(ctx context.Context, run *entity.BuildRun, log *zap.Logger) {
	msg := entity.CacheBuiltMessage{
		RunID:    run.ID,
		Split:    run.Split,
		Status:   run.Status,
		Total:    run.Total,
		Written:  run.Written,
		Skipped:  len(run.Skipped),
		CacheDir: b.store.Dir(run.Split),
	}
	data, _ := json.Marshal(msg)
	if err := b.events.PublishCacheBuilt(ctx, data); err != nil {
		log.Error("failed to publish cache built event", zap.Error(err))
	}
}

type nopMirror struct{}

func (nopMirror) MirrorArchive(context.Context, entity.Split, string) error { return nil }

type nopLedger struct{}

func (nopLedger) StartRun(context.Context, *entity.BuildRun) error { return nil }

func (nopLedger) RecordSkip(context.Context, *entity.BuildRun, entity.SkippedSample) error {
	return nil
}

func (nopLedger) FinishRun(context.Context, *entity.BuildRun) error { return nil }

type nopEvents struct{}

func (nopEvents) PublishCacheBuilt(context.Context, []byte) error { return nil }
