// source: scoring.sql

package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const getLatestScoringByPartner = `-- name: GetLatestScoringByPartner :one
SELECT id, seq, partner_id, score, risk_level, scoring_factors, explanation, scored_by, created_at
FROM partner_scoring
WHERE partner_id = $1
ORDER BY created_at DESC, seq DESC
LIMIT 1
`

func (q *Queries) GetLatestScoringByPartner(ctx context.Context, partnerID uuid.UUID) (PartnerScoring, error) {
	row := q.db.QueryRowContext(ctx, getLatestScoringByPartner, partnerID)
	var i PartnerScoring
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.PartnerID,
		&i.Score,
		&i.RiskLevel,
		&i.ScoringFactors,
		&i.Explanation,
		&i.ScoredBy,
		&i.CreatedAt,
	)
	return i, err
}

const insertPartnerScoring = `-- name: InsertPartnerScoring :one
INSERT INTO partner_scoring (partner_id, score, risk_level, scoring_factors, explanation, scored_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, seq, partner_id, score, risk_level, scoring_factors, explanation, scored_by, created_at
`

type InsertPartnerScoringParams struct {
	PartnerID      uuid.UUID       `json:"partner_id"`
	Score          int16           `json:"score"`
	RiskLevel      string          `json:"risk_level"`
	ScoringFactors json.RawMessage `json:"scoring_factors"`
	Explanation    string          `json:"explanation"`
	ScoredBy       string          `json:"scored_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (q *Queries) InsertPartnerScoring(ctx context.Context, arg InsertPartnerScoringParams) (PartnerScoring, error) {
	row := q.db.QueryRowContext(ctx, insertPartnerScoring,
		arg.PartnerID,
		arg.Score,
		arg.RiskLevel,
		arg.ScoringFactors,
		arg.Explanation,
		arg.ScoredBy,
		arg.CreatedAt,
	)
	var i PartnerScoring
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.PartnerID,
		&i.Score,
		&i.RiskLevel,
		&i.ScoringFactors,
		&i.Explanation,
		&i.ScoredBy,
		&i.CreatedAt,
	)
	return i, err
}

const listScoringsWithPartner = `-- name: ListScoringsWithPartner :many
SELECT s.id, s.seq, s.partner_id, s.score, s.risk_level, s.scoring_factors, s.explanation, s.scored_by, s.created_at,
       p.company_name, p.status
FROM partner_scoring s
JOIN retail_partners p ON p.id = s.partner_id
ORDER BY s.created_at DESC, s.seq DESC
`

type ListScoringsWithPartnerRow struct {
	ID             uuid.UUID       `json:"id"`
	Seq            int64           `json:"seq"`
	PartnerID      uuid.UUID       `json:"partner_id"`
	Score          int16           `json:"score"`
	RiskLevel      string          `json:"risk_level"`
	ScoringFactors json.RawMessage `json:"scoring_factors"`
	Explanation    string          `json:"explanation"`
	ScoredBy       string          `json:"scored_by"`
	CreatedAt      time.Time       `json:"created_at"`
	CompanyName    string          `json:"company_name"`
	Status         string          `json:"status"`
}

func (q *Queries) ListScoringsWithPartner(ctx context.Context) ([]ListScoringsWithPartnerRow, error) {
	rows, err := q.db.QueryContext(ctx, listScoringsWithPartner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListScoringsWithPartnerRow
	for rows.Next() {
		var i ListScoringsWithPartnerRow
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.PartnerID,
			&i.Score,
			&i.RiskLevel,
			&i.ScoringFactors,
			&i.Explanation,
			&i.ScoredBy,
			&i.CreatedAt,
			&i.CompanyName,
			&i.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
