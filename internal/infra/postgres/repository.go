package postgres

import (
	"context"
	"fmt"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_build_runs (
	id            UUID PRIMARY KEY,
	split         TEXT NOT NULL,
	status        TEXT NOT NULL,
	total         INTEGER NOT NULL,
	written       INTEGER NOT NULL DEFAULT 0,
	skipped       INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS cache_build_skips (
	run_id     UUID NOT NULL REFERENCES cache_build_runs(id) ON DELETE CASCADE,
	sample_id  TEXT NOT NULL,
	class      TEXT NOT NULL,
	reason     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// RunLedger records cache build runs and skipped samples in postgres.
type RunLedger struct {
	pool *pgxpool.Pool
}

func NewRunLedger(pool *pgxpool.Pool) *RunLedger {
	return &RunLedger{pool: pool}
}

func (r *RunLedger) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *RunLedger) StartRun(ctx context.Context, run *entity.BuildRun) error {
	query := `
		INSERT INTO cache_build_runs (id, split, status, total, started_at)
		VALUES ($1,$2,$3,$4,$5)`

	_, err := r.pool.Exec(ctx, query,
		run.ID, string(run.Split), string(run.Status), run.Total, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunLedger) RecordSkip(ctx context.Context, run *entity.BuildRun, skip entity.SkippedSample) error {
	query := `
		INSERT INTO cache_build_skips (run_id, sample_id, class, reason)
		VALUES ($1,$2,$3,$4)`

	_, err := r.pool.Exec(ctx, query, run.ID, skip.SampleID, skip.Class, skip.Reason)
	if err != nil {
		return fmt.Errorf("insert skip: %w", err)
	}
	return nil
}

func (r *RunLedger) FinishRun(ctx context.Context, run *entity.BuildRun) error {
	query := `
		UPDATE cache_build_runs SET
			status=$2, written=$3, skipped=$4, error_message=$5, completed_at=$6
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		run.ID, string(run.Status), run.Written, len(run.Skipped),
		run.ErrorMessage, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// FindRun loads a run with its skipped samples.
func (r *RunLedger) FindRun(ctx context.Context, id uuid.UUID) (*entity.BuildRun, error) {
	query := `
		SELECT id, split, status, total, written, error_message, started_at, completed_at
		FROM cache_build_runs WHERE id=$1`

	run := &entity.BuildRun{}
	var split, status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &split, &status, &run.Total, &run.Written,
		&run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	run.Split = entity.Split(split)
	run.Status = entity.RunStatus(status)

	rows, err := r.pool.Query(ctx,
		`SELECT sample_id, class, reason FROM cache_build_skips WHERE run_id=$1 ORDER BY created_at, sample_id`, id)
	if err != nil {
		return nil, fmt.Errorf("find skips: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.SkippedSample
		if err := rows.Scan(&s.SampleID, &s.Class, &s.Reason); err != nil {
			return nil, fmt.Errorf("scan skip: %w", err)
		}
		run.Skipped = append(run.Skipped, s)
	}
	return run, rows.Err()
}
