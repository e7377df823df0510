package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Stage names the pipeline's orchestration states.
type Stage string

const (
	StageLoadOrBootstrap   Stage = "load_or_bootstrap"
	StageResolveCandidates Stage = "resolve_candidates"
	StageRemoteEnrich      Stage = "remote_enrich"
	StageRelationalEnrich  Stage = "relational_enrich"
	StageEmit              Stage = "emit"
)

// RunResult captures the bookkeeping of one pipeline run.
type RunResult struct {
	RunID          string
	Records        int
	SnapshotLoaded bool // prior enriched snapshot found, remote stage skipped
	SearchesIssued int
	DetailFetches  int
	OutputPath     string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	StageDurations map[Stage]time.Duration
}

// NewRunResult initializes a run result with a fresh run id.
func NewRunResult() *RunResult {
	return &RunResult{
		RunID:          uuid.New().String(),
		StartTime:      time.Now(),
		StageDurations: make(map[Stage]time.Duration),
	}
}

// Complete marks the run as finished and calculates its duration.
func (r *RunResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// RecordStage stores the elapsed time of one stage.
func (r *RunResult) RecordStage(stage Stage, start time.Time) {
	r.StageDurations[stage] = time.Since(start)
}
