package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fiapx/fiapx-dataset-service/internal/cache"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/config"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/imageio"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/metrics"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/tracing"
	"github.com/fiapx/fiapx-dataset-service/internal/manifest"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"github.com/fiapx/fiapx-dataset-service/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the shared runtime built once per invocation.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	ctx      context.Context
	cleanups []func()
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	var metricsPort int

	root := &cobra.Command{
		Use:           "dataset",
		Short:         "Prepare video classification datasets for training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.init(cmd.Context()); err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-port") {
				a.cfg.MetricsPort = metricsPort
			}
			a.startObservability(cmd.Name())
			return nil
		},
	}
	root.PersistentFlags().IntVar(&metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port while running")

	root.AddCommand(
		newExtractCommand(a),
		newCacheCommand(a),
		newInspectCommand(a),
	)
	return root, a
}

func (a *app) init(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)

	a.cfg, a.log, a.ctx = cfg, log, ctx
	a.cleanups = append(a.cleanups, stop, func() { _ = log.Sync() })
	return nil
}

func (a *app) startObservability(command string) {
	if a.cfg.JaegerEndpoint != "" {
		tp, err := tracing.InitTracer(a.ctx, tracing.Config{
			Endpoint:    a.cfg.JaegerEndpoint,
			SampleRatio: a.cfg.TraceSample,
			Command:     command,
		})
		if err != nil {
			a.log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			a.onClose(func() { _ = tp.Shutdown(context.Background()) })
		}
	}
	if a.cfg.MetricsPort > 0 {
		srv := metrics.StartMetricsServer(a.ctx, a.cfg.MetricsPort, a.cacheStats, a.log)
		a.onClose(func() { shutdownServer(srv) })
	}
}

func (a *app) cacheStats() (map[string]int, error) {
	store := a.cacheStore()
	counts := make(map[string]int, len(entity.Splits))
	for _, split := range entity.Splits {
		files, err := store.List(split)
		if err != nil {
			return nil, err
		}
		counts[string(split)] = len(files)
	}
	return counts, nil
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func (a *app) onClose(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

// close runs cleanups in reverse registration order.
func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

func (a *app) manifestStore() *manifest.Store {
	return manifest.NewStore(manifest.StoreConfig{
		Path:         a.cfg.ManifestPath,
		MinSeqLength: a.cfg.MinSeqLength,
		MaxSeqLength: a.cfg.MaxSeqLength,
	}, a.log)
}

func (a *app) sequenceBuilder() *sequence.Builder {
	return sequence.NewBuilder(imageio.NewLoader(), sequence.BuilderConfig{
		FrameRoot:    a.cfg.FrameRoot,
		FrameExt:     a.cfg.FrameExt,
		Height:       a.cfg.ImageHeight,
		Width:        a.cfg.ImageWidth,
		MinSeqLength: a.cfg.MinSeqLength,
	})
}

func (a *app) cacheStore() *cache.Store {
	return cache.NewStore(a.cfg.CacheRoot)
}

// rng is seeded from SHUFFLE_SEED, or from the clock when it is zero.
func (a *app) rng() *rand.Rand {
	seed := a.cfg.ShuffleSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

func progressWriter() *os.File {
	return os.Stderr
}
