// Package scoring implements the rule-based partner fitness score: it
// normalizes a retail partner application into sub-scores, combines them under
// fixed weights, and derives a risk tier and a short explanation.
//
// Everything here is pure and total. Nothing in this package performs I/O or
// returns an error; missing input degrades to documented defaults.
package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ─── RISK LEVEL ───────────────────────────────────────────────────────────────

// RiskLevel is the three-bucket classification. String values match the
// risk_level column and the AI response schema.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Tier thresholds: High below 50, Medium in [50, 70), Low from 70.
const (
	mediumFloor = 50
	lowFloor    = 70
)

// RiskLevelFor classifies a final score.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= lowFloor:
		return RiskLow
	case score >= mediumFloor:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ParseRiskLevel accepts "low", "MEDIUM", " High " etc. The second return is
// false for anything that is not one of the three tiers.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch normalize(s) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	default:
		return "", false
	}
}

// ─── RESULT TYPES ─────────────────────────────────────────────────────────────

// Factors is the reported breakdown. Years in business feeds the weighted
// score but is only exposed inside Details, keeping the five-factor shape
// consumers depend on.
type Factors struct {
	BusinessTypeScore   int            `json:"businessTypeScore"`
	LocationScore       int            `json:"locationScore"`
	VolumeScore         int            `json:"volumeScore"`
	InfrastructureScore int            `json:"infrastructureScore"`
	VerificationScore   int            `json:"verificationScore"`
	Details             map[string]any `json:"details"`
}

// Result is the unit that is persisted and returned to callers.
type Result struct {
	Score          int       `json:"score"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	Explanation    string    `json:"explanation"`
	ScoringFactors Factors   `json:"scoringFactors"`

	// AIRiskOverride is set when an AI verdict supplied a tier that differs
	// from the one the final score implies.
	AIRiskOverride bool `json:"aiRiskOverride,omitempty"`
}

// ─── WEIGHTS ──────────────────────────────────────────────────────────────────

// Weights are exact decimals so the weighted sum never drifts below a .5
// boundary through binary floating point.
var (
	weightBusinessType   = decimal.RequireFromString("0.25")
	weightVolume         = decimal.RequireFromString("0.25")
	weightYears          = decimal.RequireFromString("0.15")
	weightInfrastructure = decimal.RequireFromString("0.15")
	weightVerification   = decimal.RequireFromString("0.10")
	weightLocation       = decimal.RequireFromString("0.10")
)

// TotalWeight is the sum of all factor weights. It must equal 1.
func TotalWeight() decimal.Decimal {
	return decimal.Sum(
		weightBusinessType,
		weightVolume,
		weightYears,
		weightInfrastructure,
		weightVerification,
		weightLocation,
	)
}

// SubScores is the full set of six normalized inputs to the weighted sum.
type SubScores struct {
	BusinessType   int
	Volume         int
	Years          int
	Infrastructure int
	Verification   int
	Location       int
}

// Normalize computes all six sub-scores for an application.
func Normalize(a ApplicationData) SubScores {
	return SubScores{
		BusinessType:   BusinessTypeScore(a.BusinessType),
		Volume:         VolumeScore(a.EstimatedMonthlyVolume),
		Years:          YearsScore(a.YearsInBusiness),
		Infrastructure: InfrastructureScore(a),
		Verification:   VerificationScore(a),
		Location:       LocationScore(a),
	}
}

// Weighted combines sub-scores and rounds half away from zero.
func Weighted(s SubScores) int {
	sum := decimal.Sum(
		weightBusinessType.Mul(decimal.NewFromInt(int64(s.BusinessType))),
		weightVolume.Mul(decimal.NewFromInt(int64(s.Volume))),
		weightYears.Mul(decimal.NewFromInt(int64(s.Years))),
		weightInfrastructure.Mul(decimal.NewFromInt(int64(s.Infrastructure))),
		weightVerification.Mul(decimal.NewFromInt(int64(s.Verification))),
		weightLocation.Mul(decimal.NewFromInt(int64(s.Location))),
	)
	return clampScore(int(sum.Round(0).IntPart()))
}

// ─── ENTRY POINT ──────────────────────────────────────────────────────────────

// Score runs the full rule-based pipeline. Identical input always yields an
// identical Result.
func Score(a ApplicationData) Result {
	sub := Normalize(a)
	score := Weighted(sub)
	level := RiskLevelFor(score)

	factors := Factors{
		BusinessTypeScore:   sub.BusinessType,
		LocationScore:       sub.Location,
		VolumeScore:         sub.Volume,
		InfrastructureScore: sub.Infrastructure,
		VerificationScore:   sub.Verification,
		Details:             details(a, sub),
	}

	return Result{
		Score:          score,
		RiskLevel:      level,
		Explanation:    Explain(factors, level),
		ScoringFactors: factors,
	}
}

// details echoes the raw inputs for display and audit. Nothing downstream
// computes from it.
func details(a ApplicationData, sub SubScores) map[string]any {
	d := map[string]any{
		"yearsScore":    sub.Years,
		"location":      fmt.Sprintf("%s, %s", orUnknown(a.City), orUnknown(a.State)),
		"hasWebsite":    present(a.Website),
		"hasInstagram":  present(a.InstagramHandle),
		"documentCount": len(a.VerificationDocuments),
	}
	if present(a.BusinessType) {
		d["businessType"] = a.BusinessType
	}
	if present(a.EstimatedMonthlyVolume) {
		d["volume"] = a.EstimatedMonthlyVolume
	}
	if present(a.POSSystem) {
		d["posSystem"] = a.POSSystem
	}
	if a.HasRefrigeration != nil {
		d["hasRefrigeration"] = *a.HasRefrigeration
	}
	return d
}

func orUnknown(s string) string {
	if !present(s) {
		return "Unknown"
	}
	return s
}
