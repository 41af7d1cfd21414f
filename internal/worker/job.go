package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
)

// BatchScorer runs one batch pass. *orchestrator.Service satisfies it.
type BatchScorer interface {
	ScoreBatch(ctx context.Context) (orchestrator.BatchOutcome, error)
}

// Job is a single batch pass under its own deadline.
type Job struct {
	scorer  BatchScorer
	timeout time.Duration
	logger  *slog.Logger
}

// NewJob constructs a Job. A non-positive timeout selects 5 minutes.
func NewJob(scorer BatchScorer, timeout time.Duration, logger *slog.Logger) *Job {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Job{scorer: scorer, timeout: timeout, logger: logger}
}

// Run scores every pending partner once. A returned error with a non-zero
// Processed count means the pass was cut short after doing some work.
func (j *Job) Run(ctx context.Context) (orchestrator.BatchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	out, err := j.scorer.ScoreBatch(ctx)
	if err != nil {
		return out, fmt.Errorf("job: score batch: %w", err)
	}

	saved, mirrored := 0, 0
	for _, item := range out.Results {
		if item.Saved {
			saved++
		}
		if item.PartnerUpdated {
			mirrored++
		}
	}
	j.logger.Info("job: batch completed",
		"processed", out.Processed,
		"saved", saved,
		"partner_updated", mirrored,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
