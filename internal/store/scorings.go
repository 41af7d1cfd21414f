package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nyashahama/partner-risk-engine/internal/db"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// InsertScoring appends a scoring record. Records are never updated after
// this; a rescoring is a new row.
func (s *Store) InsertScoring(ctx context.Context, n NewScoring) (ScoringRecord, error) {
	factors, err := json.Marshal(n.Result.ScoringFactors)
	if err != nil {
		return ScoringRecord{}, fmt.Errorf("store: marshal scoring factors: %w", err)
	}

	row, err := s.q.InsertPartnerScoring(ctx, db.InsertPartnerScoringParams{
		PartnerID:      n.PartnerID,
		Score:          int16(n.Result.Score),
		RiskLevel:      string(n.Result.RiskLevel),
		ScoringFactors: factors,
		Explanation:    n.Result.Explanation,
		ScoredBy:       string(n.ScoredBy),
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return ScoringRecord{}, fmt.Errorf("store: insert scoring for partner %s: %w", n.PartnerID, err)
	}
	return recordFromRow(row)
}

// LatestScoring returns the most recent record for a partner. Equal
// timestamps resolve to the later insertion. ErrNoScoring when none exists.
func (s *Store) LatestScoring(ctx context.Context, partnerID uuid.UUID) (ScoringRecord, error) {
	row, err := s.q.GetLatestScoringByPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScoringRecord{}, ErrNoScoring
		}
		return ScoringRecord{}, fmt.Errorf("store: latest scoring for partner %s: %w", partnerID, err)
	}
	return recordFromRow(row)
}

// ListScorings returns every record newest first, joined with its partner.
func (s *Store) ListScorings(ctx context.Context) ([]ListedScoring, error) {
	rows, err := s.q.ListScoringsWithPartner(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list scorings: %w", err)
	}
	out := make([]ListedScoring, 0, len(rows))
	for _, r := range rows {
		rec, err := recordFromRow(db.PartnerScoring{
			ID:             r.ID,
			Seq:            r.Seq,
			PartnerID:      r.PartnerID,
			Score:          r.Score,
			RiskLevel:      r.RiskLevel,
			ScoringFactors: r.ScoringFactors,
			Explanation:    r.Explanation,
			ScoredBy:       r.ScoredBy,
			CreatedAt:      r.CreatedAt,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, ListedScoring{
			ScoringRecord: rec,
			Partner:       PartnerRef{CompanyName: r.CompanyName, Status: r.Status},
		})
	}
	return out, nil
}

func recordFromRow(r db.PartnerScoring) (ScoringRecord, error) {
	var factors scoring.Factors
	if len(r.ScoringFactors) > 0 {
		if err := json.Unmarshal(r.ScoringFactors, &factors); err != nil {
			return ScoringRecord{}, fmt.Errorf("store: decode scoring factors of %s: %w", r.ID, err)
		}
	}
	return ScoringRecord{
		ID:             uuid.NullUUID{UUID: r.ID, Valid: true},
		PartnerID:      r.PartnerID,
		Score:          int(r.Score),
		RiskLevel:      scoring.RiskLevel(r.RiskLevel),
		ScoringFactors: factors,
		Explanation:    r.Explanation,
		ScoredBy:       Provenance(r.ScoredBy),
		CreatedAt:      r.CreatedAt,
	}, nil
}
