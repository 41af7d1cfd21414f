package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/partner-risk-engine/internal/db"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// GetPartner loads one partner and decodes its application data. A NULL or
// malformed application_data column yields an empty application, never an
// error.
func (s *Store) GetPartner(ctx context.Context, id uuid.UUID) (Partner, error) {
	row, err := s.q.GetPartnerByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Partner{}, ErrPartnerNotFound
		}
		return Partner{}, fmt.Errorf("store: get partner %s: %w", id, err)
	}
	return partnerFromRow(row), nil
}

// ListPartnersByStatus returns every partner in status, oldest first.
func (s *Store) ListPartnersByStatus(ctx context.Context, status string) ([]Partner, error) {
	rows, err := s.q.ListPartnersByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("store: list partners with status %q: %w", status, err)
	}
	out := make([]Partner, 0, len(rows))
	for _, r := range rows {
		out = append(out, partnerFromRow(r))
	}
	return out, nil
}

// NewPartner is the input to CreatePartner. Application is stored verbatim;
// an empty value stores NULL.
type NewPartner struct {
	CompanyName string
	Email       string
	Status      string
	Application json.RawMessage
}

// CreatePartner inserts a retail partner.
func (s *Store) CreatePartner(ctx context.Context, n NewPartner) (Partner, error) {
	row, err := s.q.CreatePartner(ctx, db.CreatePartnerParams{
		CompanyName: n.CompanyName,
		Email:       n.Email,
		Status:      n.Status,
		ApplicationData: pqtype.NullRawMessage{
			RawMessage: n.Application,
			Valid:      len(n.Application) > 0,
		},
	})
	if err != nil {
		return Partner{}, fmt.Errorf("store: create partner: %w", err)
	}
	return partnerFromRow(row), nil
}

// UpdatePartnerSummary mirrors a score onto the partner row. It returns
// ErrPartnerNotFound when no row was touched.
func (s *Store) UpdatePartnerSummary(ctx context.Context, id uuid.UUID, score int, level scoring.RiskLevel, at time.Time) error {
	n, err := s.q.UpdatePartnerScore(ctx, db.UpdatePartnerScoreParams{
		ID:          id,
		LatestScore: sql.NullInt16{Int16: int16(score), Valid: true},
		RiskLevel:   sql.NullString{String: string(level), Valid: true},
		UpdatedAt:   at,
	})
	if err != nil {
		return fmt.Errorf("store: update partner %s summary: %w", id, err)
	}
	if n == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func partnerFromRow(r db.RetailPartner) Partner {
	p := Partner{
		ID:          r.ID,
		CompanyName: r.CompanyName,
		Email:       r.Email,
		Status:      r.Status,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ApplicationData.Valid {
		p.Application = scoring.DecodeApplication(r.ApplicationData.RawMessage)
	}
	if r.LatestScore.Valid {
		v := int(r.LatestScore.Int16)
		p.LatestScore = &v
	}
	if r.RiskLevel.Valid {
		p.RiskLevel = scoring.RiskLevel(r.RiskLevel.String)
	}
	return p
}
