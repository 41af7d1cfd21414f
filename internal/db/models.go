package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type RetailPartner struct {
	ID              uuid.UUID             `json:"id"`
	CompanyName     string                `json:"company_name"`
	Email           string                `json:"email"`
	Status          string                `json:"status"`
	ApplicationData pqtype.NullRawMessage `json:"application_data"`
	LatestScore     sql.NullInt16         `json:"latest_score"`
	RiskLevel       sql.NullString        `json:"risk_level"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type PartnerScoring struct {
	ID             uuid.UUID       `json:"id"`
	Seq            int64           `json:"seq"`
	PartnerID      uuid.UUID       `json:"partner_id"`
	Score          int16           `json:"score"`
	RiskLevel      string          `json:"risk_level"`
	ScoringFactors json.RawMessage `json:"scoring_factors"`
	Explanation    string          `json:"explanation"`
	ScoredBy       string          `json:"scored_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
