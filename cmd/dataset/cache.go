package main

import (
	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/minio"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/postgres"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"github.com/fiapx/fiapx-dataset-service/internal/usecase"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCacheCommand(a *app) *cobra.Command {
	var splits []string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build compressed sequence archives for the given splits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets := make([]entity.Split, 0, len(splits))
			for _, s := range splits {
				split, err := entity.ParseSplit(s)
				if err != nil {
					return err
				}
				targets = append(targets, split)
			}

			store := a.manifestStore()
			if err := store.Load(); err != nil {
				return err
			}

			deps, err := a.cacheDeps()
			if err != nil {
				return err
			}
			builder := usecase.NewCacheBuilder(
				store,
				a.sequenceBuilder(),
				sequence.NewOccluder(a.cfg.OcclusionClass),
				a.cacheStore(),
				a.rng(),
				a.log,
				deps,
			)

			for _, split := range targets {
				run, err := builder.BuildAll(a.ctx, split)
				if err != nil {
					return err
				}
				for _, s := range run.Skipped {
					a.log.Warn("skipped sample", zap.String("split", string(split)), zap.String("sample_id", s.SampleID), zap.String("reason", s.Reason))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&splits, "split", []string{"train", "test"}, "splits to cache")
	return cmd
}

// cacheDeps connects the optional mirror, ledger and event publisher that
// are configured.
func (a *app) cacheDeps() (usecase.CacheBuilderDeps, error) {
	deps := usecase.CacheBuilderDeps{Progress: progressWriter()}

	if a.cfg.MinIOEndpoint != "" {
		mirror, err := minio.NewArchiveMirror(minio.StorageConfig{
			Endpoint:  a.cfg.MinIOEndpoint,
			AccessKey: a.cfg.MinIOAccessKey,
			SecretKey: a.cfg.MinIOSecretKey,
			UseSSL:    a.cfg.MinIOUseSSL,
			Bucket:    a.cfg.MinIOBucket,
		})
		if err != nil {
			return deps, err
		}
		if err := mirror.EnsureBucket(a.ctx); err != nil {
			return deps, err
		}
		deps.Mirror = mirror
	}

	if a.cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(a.ctx, a.cfg.DatabaseURL)
		if err != nil {
			return deps, err
		}
		a.onClose(pool.Close)
		ledger := postgres.NewRunLedger(pool)
		if err := ledger.EnsureSchema(a.ctx); err != nil {
			return deps, err
		}
		deps.Ledger = ledger
	}

	if a.cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(a.cfg.RabbitMQURL)
		if err != nil {
			return deps, err
		}
		a.onClose(func() { _ = conn.Close() })
		pub, err := rabbitmq.NewPublisher(conn, a.cfg.RabbitMQExchange)
		if err != nil {
			return deps, err
		}
		deps.Events = rabbitmq.NewEventPublisher(pub)
	}

	return deps, nil
}
