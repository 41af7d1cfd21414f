// Package store wraps db.Querier and maps rows to the scoring domain: partners
// with decoded application data, and immutable scoring records.
//
// Dependency rule: store imports db and scoring only. It never imports api,
// rpc, orchestrator, or ai.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/partner-risk-engine/internal/db"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrPartnerNotFound is returned when no retail_partners row has the id.
var ErrPartnerNotFound = fmt.Errorf("store: partner not found: %w", sql.ErrNoRows)

// ErrNoScoring is returned when a partner has no scoring history yet.
var ErrNoScoring = fmt.Errorf("store: no scoring for partner: %w", sql.ErrNoRows)

// ─── DOMAIN TYPES ────────────────────────────────────────────────────────────

// Provenance records which computation path produced a ScoringRecord.
type Provenance string

const (
	ProvenanceRules Provenance = "rules"
	ProvenanceAI    Provenance = "ai"
	ProvenanceBatch Provenance = "batch"
)

// Partner is a retail partner with its application decoded.
type Partner struct {
	ID          uuid.UUID
	CompanyName string
	Email       string
	Status      string
	Application scoring.ApplicationData

	// LatestScore and RiskLevel are the mirrored summary; nil/empty when the
	// partner has never been scored or the mirror write never landed.
	LatestScore *int
	RiskLevel   scoring.RiskLevel
	UpdatedAt   time.Time
}

// ScoringRecord is one persisted scoring. ID is null for a record that was
// computed but could not be saved.
type ScoringRecord struct {
	ID             uuid.NullUUID     `json:"id"`
	PartnerID      uuid.UUID         `json:"partner_id"`
	Score          int               `json:"score"`
	RiskLevel      scoring.RiskLevel `json:"risk_level"`
	ScoringFactors scoring.Factors   `json:"scoring_factors"`
	Explanation    string            `json:"explanation"`
	ScoredBy       Provenance        `json:"scored_by"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Result returns the scoring result carried by the record.
func (r ScoringRecord) Result() scoring.Result {
	return scoring.Result{
		Score:          r.Score,
		RiskLevel:      r.RiskLevel,
		Explanation:    r.Explanation,
		ScoringFactors: r.ScoringFactors,
	}
}

// PartnerRef is the slice of partner identity shown alongside a listed
// scoring.
type PartnerRef struct {
	CompanyName string `json:"company_name"`
	Status      string `json:"status"`
}

// ListedScoring is a ScoringRecord joined with its partner.
type ListedScoring struct {
	ScoringRecord
	Partner PartnerRef `json:"partner"`
}

// NewScoring is the input to InsertScoring.
type NewScoring struct {
	PartnerID uuid.UUID
	Result    scoring.Result
	ScoredBy  Provenance
	CreatedAt time.Time
}

// ─── STORE ───────────────────────────────────────────────────────────────────

// Store holds the raw pool for health checks and a db.Querier for queries.
// The operation files (partners.go, scorings.go) attach methods to this type.
type Store struct {
	pool *sql.DB
	q    db.Querier
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified (e.g. via PingContext) before calling New.
func New(pool *sql.DB, q db.Querier) *Store {
	return &Store{pool: pool, q: q}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("store: no connection pool")
	}
	if err := s.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}
