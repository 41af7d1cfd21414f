// Package app builds the dependency graph shared by cmd/api and cmd/scorectl:
// database, store, AI augmenter, event publisher, metrics, and the scoring
// orchestrator.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/nyashahama/partner-risk-engine/internal/ai"
	"github.com/nyashahama/partner-risk-engine/internal/config"
	"github.com/nyashahama/partner-risk-engine/internal/db"
	"github.com/nyashahama/partner-risk-engine/internal/events"
	"github.com/nyashahama/partner-risk-engine/internal/metrics"
	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// Pinger reports data-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds every long-lived dependency. Pool and Store are nil when no
// DATABASE_URL is configured.
type App struct {
	Config    *config.Config
	Pool      *sql.DB
	Store     *store.Store
	Metrics   *metrics.Metrics
	Publisher events.Publisher
	Augmenter *ai.Augmenter
	Service   *orchestrator.Service

	logger *slog.Logger
}

// New wires the application. A missing DATABASE_URL is not an error: the
// service starts and every scoring call reports ErrNotConfigured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Metrics:   metrics.New(),
		Publisher: events.Nop{},
		logger:    logger,
	}

	// ── Database ──────────────────────────────────────────────────────────────
	var st orchestrator.Store
	if cfg.DatabaseURL != "" {
		pool, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: database: %w", err)
		}
		a.Pool = pool
		logger.Info("database connected")

		if cfg.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				_ = pool.Close()
				return nil, fmt.Errorf("app: migrate: %w", err)
			}
			logger.Info("database migrated")
		}

		a.Store = store.New(pool, db.New(pool))
		st = a.Store
	} else {
		logger.Warn("DATABASE_URL not set, scoring is unavailable")
	}

	// ── AI ────────────────────────────────────────────────────────────────────
	a.Augmenter = ai.NewAugmenter(NewCompleter(cfg, logger), ai.AugmenterConfig{
		Timeout:     cfg.AITimeout,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Recorder:    a.Metrics,
	}, logger)

	// ── Events ────────────────────────────────────────────────────────────────
	if len(cfg.KafkaBrokers) > 0 {
		a.Publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("events: publishing to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// ── Orchestrator ──────────────────────────────────────────────────────────
	opts := []orchestrator.Option{
		orchestrator.WithPublisher(a.Publisher),
		orchestrator.WithMetrics(a.Metrics),
		orchestrator.WithPendingStatus(cfg.PendingStatus),
	}
	if a.Augmenter.Enabled() {
		opts = append(opts, orchestrator.WithAugmenter(a.Augmenter))
	}
	a.Service = orchestrator.New(st, logger, opts...)

	return a, nil
}

// NewCompleter selects the AI provider chain from the configured credentials:
// OpenAI-compatible first, Anthropic second. It returns nil when neither key
// is set.
func NewCompleter(cfg *config.Config, logger *slog.Logger) ai.Completer {
	var primary, secondary ai.Completer
	if cfg.OpenAIAPIKey != "" {
		primary = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
	if cfg.AnthropicAPIKey != "" {
		secondary = ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, ai.DefaultAnthropicBaseURL)
	}

	switch {
	case primary != nil && secondary != nil:
		logger.Info("ai: using OpenAI with Anthropic fallback", "model", cfg.OpenAIModel)
	case primary != nil:
		logger.Info("ai: using OpenAI only", "model", cfg.OpenAIModel)
	case secondary != nil:
		logger.Info("ai: using Anthropic only", "model", cfg.AnthropicModel)
	default:
		logger.Info("ai: no provider configured, rule-based scoring only")
	}
	return ai.NewFallbackCompleter(primary, secondary, logger)
}

// Pinger returns the store as a Pinger, or nil when no database is
// configured.
func (a *App) Pinger() Pinger {
	if a.Store == nil {
		return nil
	}
	return a.Store
}

// Close flushes the publisher and closes the pool.
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if a.Pool != nil {
		if err := a.Pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// openDB opens the connection pool and verifies it is reachable.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	// Tune the connection pool.
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
