// Package orchestrator is the scoring entry point. It loads a partner,
// decides between the cached record and a fresh computation, runs the
// rule-based scorer (optionally AI-augmented), and performs the two
// independent writes: the scoring-history insert and the partner-summary
// mirror. Neither write failing ever discards the computed result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/partner-risk-engine/internal/events"
	"github.com/nyashahama/partner-risk-engine/internal/metrics"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrNotConfigured means no data store is available; nothing is computed.
	ErrNotConfigured = errors.New("orchestrator: scoring store not configured")

	// ErrPartnerNotFound means the partner id does not exist.
	ErrPartnerNotFound = errors.New("orchestrator: partner not found")

	// ErrInvalidRequest means a required identifier is missing or malformed.
	ErrInvalidRequest = errors.New("orchestrator: invalid request")
)

// WarningNotSaved accompanies a result whose scoring record could not be
// written.
const WarningNotSaved = "Score calculated but could not be saved to history"

// DefaultPendingStatus is the partner status selected by batch scoring.
const DefaultPendingStatus = "pending"

// publishTimeout bounds the event publish so a slow broker cannot stall a
// scoring request.
const publishTimeout = 5 * time.Second

// ─── DEPENDENCIES ────────────────────────────────────────────────────────────

// Store is the persistence the orchestrator needs. *store.Store satisfies it.
type Store interface {
	GetPartner(ctx context.Context, id uuid.UUID) (store.Partner, error)
	LatestScoring(ctx context.Context, partnerID uuid.UUID) (store.ScoringRecord, error)
	ListPartnersByStatus(ctx context.Context, status string) ([]store.Partner, error)
	InsertScoring(ctx context.Context, n store.NewScoring) (store.ScoringRecord, error)
	UpdatePartnerSummary(ctx context.Context, id uuid.UUID, score int, level scoring.RiskLevel, at time.Time) error
	ListScorings(ctx context.Context) ([]store.ListedScoring, error)
}

// Augmenter blends an AI verdict into a rule-based result. *ai.Augmenter
// satisfies it.
type Augmenter interface {
	Enabled() bool
	Augment(ctx context.Context, app scoring.ApplicationData, base scoring.Result) (scoring.Result, bool)
}

// ─── SERVICE ─────────────────────────────────────────────────────────────────

// Service runs scoring requests. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	store         Store
	augmenter     Augmenter
	publisher     events.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
	pendingStatus string
}

// Option configures a Service.
type Option func(*Service)

// WithAugmenter enables AI-assisted scoring for requests that ask for it.
func WithAugmenter(a Augmenter) Option { return func(s *Service) { s.augmenter = a } }

// WithPublisher sets where PartnerScored events go.
func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides the clock used for record and summary timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithPendingStatus overrides the status batch scoring selects.
func WithPendingStatus(status string) Option {
	return func(s *Service) {
		if status != "" {
			s.pendingStatus = status
		}
	}
}

// New returns a Service. st may be nil, in which case every operation returns
// ErrNotConfigured.
func New(st Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:         st,
		publisher:     events.Nop{},
		logger:        logger,
		now:           time.Now,
		pendingStatus: DefaultPendingStatus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── SINGLE-PARTNER SCORING ──────────────────────────────────────────────────

// ScoreRequest asks for one partner to be scored.
type ScoreRequest struct {
	PartnerID        string
	ForceRecalculate bool
	UseAI            bool
}

// Outcome is the result of a single-partner request. When Cached is true the
// record came from history and Saved/PartnerUpdated are not meaningful.
type Outcome struct {
	Record         store.ScoringRecord
	Cached         bool
	Saved          bool
	PartnerUpdated bool
	Warning        string
	AIRiskOverride bool
}

// Score runs the single-partner state machine: fetch, cache check, compute,
// insert, mirror, respond.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (Outcome, error) {
	if s.store == nil {
		return Outcome{}, ErrNotConfigured
	}
	partnerID, err := parsePartnerID(req.PartnerID)
	if err != nil {
		return Outcome{}, err
	}
	logger := s.logger.With("partner_id", partnerID)

	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, store.ErrPartnerNotFound) {
			return Outcome{}, fmt.Errorf("%w: %s", ErrPartnerNotFound, partnerID)
		}
		return Outcome{}, fmt.Errorf("orchestrator: load partner: %w", err)
	}

	if !req.ForceRecalculate {
		existing, err := s.store.LatestScoring(ctx, partnerID)
		switch {
		case err == nil:
			s.metrics.CacheHit()
			logger.Debug("orchestrator: returning cached scoring", "record_id", existing.ID.UUID)
			return Outcome{Record: existing, Cached: true}, nil
		case !errors.Is(err, store.ErrNoScoring):
			return Outcome{}, fmt.Errorf("orchestrator: cache lookup: %w", err)
		}
	}

	result := scoring.Score(partner.Application)
	provenance := store.ProvenanceRules
	if req.UseAI && s.augmenter != nil && s.augmenter.Enabled() {
		if augmented, used := s.augmenter.Augment(ctx, partner.Application, result); used {
			result = augmented
			provenance = store.ProvenanceAI
		}
	}

	p := s.persist(ctx, logger, partnerID, result, provenance)
	out := Outcome{
		Record:         p.record,
		Saved:          p.saved,
		PartnerUpdated: p.partnerUpdated,
		AIRiskOverride: result.AIRiskOverride,
	}
	if !p.saved {
		out.Warning = WarningNotSaved
	}

	logger.Info("orchestrator: partner scored",
		"score", result.Score,
		"risk_level", result.RiskLevel,
		"scored_by", provenance,
		"saved", p.saved,
		"partner_updated", p.partnerUpdated,
	)
	return out, nil
}

// ─── READS ───────────────────────────────────────────────────────────────────

// Latest returns the most recent record for a partner, or nil when the
// partner has never been scored.
func (s *Service) Latest(ctx context.Context, partnerID string) (*store.ScoringRecord, error) {
	if s.store == nil {
		return nil, ErrNotConfigured
	}
	id, err := parsePartnerID(partnerID)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.LatestScoring(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoScoring) {
			return nil, nil
		}
		return nil, fmt.Errorf("orchestrator: latest scoring: %w", err)
	}
	return &rec, nil
}

// List returns every record newest first with its partner's name and status.
func (s *Service) List(ctx context.Context) ([]store.ListedScoring, error) {
	if s.store == nil {
		return nil, ErrNotConfigured
	}
	all, err := s.store.ListScorings(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: list scorings: %w", err)
	}
	return all, nil
}

// ─── WRITES ──────────────────────────────────────────────────────────────────

type persisted struct {
	record         store.ScoringRecord
	saved          bool
	partnerUpdated bool
}

// persist performs the history insert and the summary mirror independently.
// A failed insert yields a synthesized record with a null id.
func (s *Service) persist(ctx context.Context, logger *slog.Logger, partnerID uuid.UUID, result scoring.Result, provenance store.Provenance) persisted {
	now := s.now().UTC()
	s.metrics.ScoringResult(string(provenance), string(result.RiskLevel))

	var p persisted
	rec, err := s.store.InsertScoring(ctx, store.NewScoring{
		PartnerID: partnerID,
		Result:    result,
		ScoredBy:  provenance,
		CreatedAt: now,
	})
	if err != nil {
		logger.Error("orchestrator: could not save scoring record", "write", metrics.WriteScoring, "error", err)
		s.metrics.PersistFailure(metrics.WriteScoring)
		rec = unsavedRecord(partnerID, result, provenance, now)
	} else {
		p.saved = true
	}
	p.record = rec

	if err := s.store.UpdatePartnerSummary(ctx, partnerID, result.Score, result.RiskLevel, now); err != nil {
		logger.Error("orchestrator: could not update partner summary", "write", metrics.WritePartner, "error", err)
		s.metrics.PersistFailure(metrics.WritePartner)
	} else {
		p.partnerUpdated = true
	}

	if p.saved {
		s.publish(ctx, logger, rec)
	}
	return p
}

func (s *Service) publish(ctx context.Context, logger *slog.Logger, rec store.ScoringRecord) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.publisher.PublishPartnerScored(ctx, events.PartnerScored{
		PartnerID: rec.PartnerID,
		RecordID:  rec.ID.UUID,
		Score:     rec.Score,
		RiskLevel: string(rec.RiskLevel),
		ScoredBy:  string(rec.ScoredBy),
		ScoredAt:  rec.CreatedAt,
	})
	if err != nil {
		logger.Warn("orchestrator: could not publish partner scored event", "error", err)
		s.metrics.EventFailure()
	}
}

func unsavedRecord(partnerID uuid.UUID, result scoring.Result, provenance store.Provenance, at time.Time) store.ScoringRecord {
	return store.ScoringRecord{
		PartnerID:      partnerID,
		Score:          result.Score,
		RiskLevel:      result.RiskLevel,
		ScoringFactors: result.ScoringFactors,
		Explanation:    result.Explanation,
		ScoredBy:       provenance,
		CreatedAt:      at,
	}
}

func parsePartnerID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: partner id is required", ErrInvalidRequest)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: partner id %q is not a valid UUID", ErrInvalidRequest, raw)
	}
	return id, nil
}
