package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// SkippedSample is a sample left out of a cache build, with the reason.
type SkippedSample struct {
	SampleID string
	Class    string
	Reason   string
}

// BuildRun tracks one bulk cache build over a split.
type BuildRun struct {
	ID           uuid.UUID
	Split        Split
	Status       RunStatus
	Total        int
	Written      int
	Skipped      []SkippedSample
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

func NewBuildRun(split Split, total int) *BuildRun {
	return &BuildRun{
		ID:        uuid.New(),
		Split:     split,
		Status:    RunStatusRunning,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
}

func (r *BuildRun) RecordWritten() {
	r.Written++
}

func (r *BuildRun) RecordSkipped(s SkippedSample) {
	r.Skipped = append(r.Skipped, s)
}

func (r *BuildRun) MarkCompleted() {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
}

func (r *BuildRun) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	r.Status = RunStatusFailed
	r.ErrorMessage = errMsg
	r.CompletedAt = &now
}
