// source: partners.sql

package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const createPartner = `-- name: CreatePartner :one
INSERT INTO retail_partners (company_name, email, status, application_data)
VALUES ($1, $2, $3, $4)
RETURNING id, company_name, email, status, application_data, latest_score, risk_level, created_at, updated_at
`

type CreatePartnerParams struct {
	CompanyName     string                `json:"company_name"`
	Email           string                `json:"email"`
	Status          string                `json:"status"`
	ApplicationData pqtype.NullRawMessage `json:"application_data"`
}

func (q *Queries) CreatePartner(ctx context.Context, arg CreatePartnerParams) (RetailPartner, error) {
	row := q.db.QueryRowContext(ctx, createPartner,
		arg.CompanyName,
		arg.Email,
		arg.Status,
		arg.ApplicationData,
	)
	var i RetailPartner
	err := row.Scan(
		&i.ID,
		&i.CompanyName,
		&i.Email,
		&i.Status,
		&i.ApplicationData,
		&i.LatestScore,
		&i.RiskLevel,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPartnerByID = `-- name: GetPartnerByID :one
SELECT id, company_name, email, status, application_data, latest_score, risk_level, created_at, updated_at
FROM retail_partners
WHERE id = $1
`

func (q *Queries) GetPartnerByID(ctx context.Context, id uuid.UUID) (RetailPartner, error) {
	row := q.db.QueryRowContext(ctx, getPartnerByID, id)
	var i RetailPartner
	err := row.Scan(
		&i.ID,
		&i.CompanyName,
		&i.Email,
		&i.Status,
		&i.ApplicationData,
		&i.LatestScore,
		&i.RiskLevel,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPartnersByStatus = `-- name: ListPartnersByStatus :many
SELECT id, company_name, email, status, application_data, latest_score, risk_level, created_at, updated_at
FROM retail_partners
WHERE status = $1
ORDER BY created_at, id
`

func (q *Queries) ListPartnersByStatus(ctx context.Context, status string) ([]RetailPartner, error) {
	rows, err := q.db.QueryContext(ctx, listPartnersByStatus, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RetailPartner
	for rows.Next() {
		var i RetailPartner
		if err := rows.Scan(
			&i.ID,
			&i.CompanyName,
			&i.Email,
			&i.Status,
			&i.ApplicationData,
			&i.LatestScore,
			&i.RiskLevel,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updatePartnerScore = `-- name: UpdatePartnerScore :execrows
UPDATE retail_partners
SET latest_score = $2,
    risk_level   = $3,
    updated_at   = $4
WHERE id = $1
`

type UpdatePartnerScoreParams struct {
	ID          uuid.UUID      `json:"id"`
	LatestScore sql.NullInt16  `json:"latest_score"`
	RiskLevel   sql.NullString `json:"risk_level"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (q *Queries) UpdatePartnerScore(ctx context.Context, arg UpdatePartnerScoreParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePartnerScore,
		arg.ID,
		arg.LatestScore,
		arg.RiskLevel,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
