// Package api implements the HTTP layer for the partner scoring service.
// Handlers are methods on *Server and talk to the orchestrator through the
// Scorer interface only.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// RequestTimeout bounds every request. Zero selects 30s. Batch scoring
	// gets BatchTimeout instead.
	RequestTimeout time.Duration
	BatchTimeout   time.Duration
}

// Scorer is the orchestrator surface the handlers use.
// *orchestrator.Service satisfies it.
type Scorer interface {
	Score(ctx context.Context, req orchestrator.ScoreRequest) (orchestrator.Outcome, error)
	ScoreBatch(ctx context.Context) (orchestrator.BatchOutcome, error)
	Latest(ctx context.Context, partnerID string) (*store.ScoringRecord, error)
	List(ctx context.Context) ([]store.ListedScoring, error)
}

// Pinger reports whether the data store is reachable. Nil means no store is
// configured.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds all shared dependencies.
type Server struct {
	scorer  Scorer
	pinger  Pinger
	metrics http.Handler

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. metrics may be
// nil, in which case /metrics is not mounted.
func NewServer(scorer Scorer, pinger Pinger, metrics http.Handler, cfg Config, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 5 * time.Minute
	}
	s := &Server{
		scorer:  scorer,
		pinger:  pinger,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", s.handleReady)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api/partners", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
			r.Get("/scoring", s.handleGetScoring)
			r.Post("/scoring", s.handleScorePartner)
			r.Get("/{partnerID}/scoring", s.handleGetPartnerScoring)
		})

		// Batch runs get their own, longer deadline.
		r.With(middleware.Timeout(s.cfg.BatchTimeout)).Post("/scoring/batch", s.handleScoreBatch)
	})

	return r
}

// handleReady returns 200 when the data store answers a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		respondErr(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err, logField(r))
		respondErr(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ready"})
}
