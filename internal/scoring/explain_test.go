package scoring_test

import (
	"testing"

	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name    string
		factors scoring.Factors
		level   scoring.RiskLevel
		want    string
	}{
		{
			name:    "no rule fires",
			factors: scoring.Factors{BusinessTypeScore: 70, VolumeScore: 60, InfrastructureScore: 60, VerificationScore: 60},
			level:   scoring.RiskMedium,
			want:    "Medium risk partner application - standard review recommended.",
		},
		{
			name:    "generic sentence uses the tier",
			factors: scoring.Factors{BusinessTypeScore: 75, VolumeScore: 75, InfrastructureScore: 65, VerificationScore: 65},
			level:   scoring.RiskLow,
			want:    "Low risk partner application - standard review recommended.",
		},
		{
			name:    "boundaries are inclusive at the top",
			factors: scoring.Factors{BusinessTypeScore: 80, VolumeScore: 80, InfrastructureScore: 70, VerificationScore: 70},
			level:   scoring.RiskLow,
			want: "Strong business type fit for wellness products. High estimated order volume. " +
				"Good infrastructure (refrigeration, POS). Well-documented business presence.",
		},
		{
			name:    "negative sentences",
			factors: scoring.Factors{BusinessTypeScore: 59, VolumeScore: 49, InfrastructureScore: 49, VerificationScore: 49},
			level:   scoring.RiskHigh,
			want: "Business type may require additional evaluation. Lower volume potential - consider starter program. " +
				"Infrastructure may need enhancement. Additional verification recommended.",
		},
		{
			name:    "single sentence",
			factors: scoring.Factors{BusinessTypeScore: 70, VolumeScore: 85, InfrastructureScore: 60, VerificationScore: 60},
			level:   scoring.RiskMedium,
			want:    "High estimated order volume.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.Explain(tt.factors, tt.level); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestExplain_IgnoresDetails(t *testing.T) {
	f := scoring.Factors{BusinessTypeScore: 90, VolumeScore: 60, InfrastructureScore: 60, VerificationScore: 60}
	plain := scoring.Explain(f, scoring.RiskLow)

	f.Details = map[string]any{"businessType": "Juice Bar", "documentCount": 4}
	if got := scoring.Explain(f, scoring.RiskLow); got != plain {
		t.Errorf("details changed the explanation: %q vs %q", got, plain)
	}
}
