package port

import (
	"context"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// RunLedger persists cache build runs and their skipped samples.
type RunLedger interface {
	StartRun(ctx context.Context, run *entity.BuildRun) error
	RecordSkip(ctx context.Context, run *entity.BuildRun, skip entity.SkippedSample) error
	FinishRun(ctx context.Context, run *entity.BuildRun) error
}
