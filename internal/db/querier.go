package db

import (
	"context"

	"github.com/google/uuid"
)

type Querier interface {
	CreatePartner(ctx context.Context, arg CreatePartnerParams) (RetailPartner, error)
	GetLatestScoringByPartner(ctx context.Context, partnerID uuid.UUID) (PartnerScoring, error)
	GetPartnerByID(ctx context.Context, id uuid.UUID) (RetailPartner, error)
	InsertPartnerScoring(ctx context.Context, arg InsertPartnerScoringParams) (PartnerScoring, error)
	ListPartnersByStatus(ctx context.Context, status string) ([]RetailPartner, error)
	ListScoringsWithPartner(ctx context.Context) ([]ListScoringsWithPartnerRow, error)
	UpdatePartnerScore(ctx context.Context, arg UpdatePartnerScoreParams) (int64, error)
}

var _ Querier = (*Queries)(nil)
