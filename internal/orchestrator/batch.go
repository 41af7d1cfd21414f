package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/partner-risk-engine/internal/scoring"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// BatchItem is one partner's outcome within a batch run.
type BatchItem struct {
	PartnerID      uuid.UUID `json:"partnerId"`
	Score          int       `json:"score"`
	Saved          bool      `json:"saved"`
	PartnerUpdated bool      `json:"partnerUpdated"`
}

// BatchOutcome is the result of a batch run. Processed equals len(Results).
type BatchOutcome struct {
	Processed int         `json:"processed"`
	Results   []BatchItem `json:"results"`
}

// ScoreBatch rule-scores every partner in the pending status, sequentially.
// One partner's persistence failure never stops the run. Cancelling ctx stops
// it between partners and returns what was processed so far with the context
// error.
func (s *Service) ScoreBatch(ctx context.Context) (BatchOutcome, error) {
	if s.store == nil {
		return BatchOutcome{}, ErrNotConfigured
	}
	start := time.Now()
	defer func() { s.metrics.ObserveBatch(time.Since(start).Seconds()) }()

	partners, err := s.store.ListPartnersByStatus(ctx, s.pendingStatus)
	if err != nil {
		return BatchOutcome{}, fmt.Errorf("orchestrator: list %s partners: %w", s.pendingStatus, err)
	}

	out := BatchOutcome{Results: make([]BatchItem, 0, len(partners))}
	for _, partner := range partners {
		if err := ctx.Err(); err != nil {
			out.Processed = len(out.Results)
			return out, fmt.Errorf("orchestrator: batch interrupted after %d partners: %w", out.Processed, err)
		}
		out.Results = append(out.Results, s.scoreOne(ctx, partner))
		s.metrics.BatchPartner()
	}
	out.Processed = len(out.Results)

	s.logger.Info("orchestrator: batch scoring complete",
		"status", s.pendingStatus,
		"processed", out.Processed,
		"duration", time.Since(start),
	)
	return out, nil
}

func (s *Service) scoreOne(ctx context.Context, partner store.Partner) BatchItem {
	logger := s.logger.With("partner_id", partner.ID, "mode", "batch")
	result := scoring.Score(partner.Application)
	p := s.persist(ctx, logger, partner.ID, result, store.ProvenanceBatch)
	return BatchItem{
		PartnerID:      partner.ID,
		Score:          result.Score,
		Saved:          p.saved,
		PartnerUpdated: p.partnerUpdated,
	}
}
