// Package worker runs batch scoring of pending partners on a fixed interval.
// It depends on the orchestrator only through the BatchScorer interface.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
)

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// values from DefaultRunnerConfig.
type RunnerConfig struct {
	// Interval between batch passes. The first pass runs immediately.
	Interval time.Duration

	// MaxRetries is how many times a pass that failed before scoring anyone
	// is attempted in total. Default: 3.
	MaxRetries int

	// Backoff is the first retry delay; it doubles per attempt. Default: 2s.
	Backoff time.Duration
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interval:   15 * time.Minute,
		MaxRetries: 3,
		Backoff:    2 * time.Second,
	}
}

// Runner triggers Job on a ticker.
type Runner struct {
	job    *Job
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner constructs a Runner. Call Start to begin processing.
func NewRunner(job *Job, cfg RunnerConfig, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	return &Runner{job: job, cfg: cfg, logger: logger}
}

// Start runs a pass immediately and then on every Interval. It blocks until
// ctx is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "interval", r.cfg.Interval, "max_retries", r.cfg.MaxRetries)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.runWithRetry(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("worker: stopped")
			return
		case <-ticker.C:
			r.runWithRetry(ctx)
		}
	}
}

// runWithRetry retries a pass only when it failed before scoring anyone,
// typically because the pending-partner read failed. A pass that scored some
// partners and then hit its deadline is not repeated; the next tick picks up
// whatever is still pending.
func (r *Runner) runWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		out, err := r.job.Run(ctx)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, orchestrator.ErrNotConfigured) {
			r.logger.Error("worker: scoring store not configured, skipping pass")
			return
		}
		if out.Processed > 0 {
			r.logger.Warn("worker: batch pass cut short",
				"processed", out.Processed,
				"error", err,
			)
			return
		}

		r.logger.Warn("worker: batch attempt failed",
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", err,
		)

		if attempt < r.cfg.MaxRetries {
			// Exponential back-off: Backoff, 2×Backoff, 4×Backoff …
			backoff := r.cfg.Backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}
	r.logger.Error("worker: batch pass failed after retries", "attempts", r.cfg.MaxRetries)
}
