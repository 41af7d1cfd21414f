package scoring

import (
	"fmt"
	"strings"
)

// Explain builds a short rationale from the factor breakdown alone. Each rule
// is checked independently; matching sentences are joined with ". ".
func Explain(f Factors, level RiskLevel) string {
	var parts []string

	switch {
	case f.BusinessTypeScore >= 80:
		parts = append(parts, "Strong business type fit for wellness products")
	case f.BusinessTypeScore < 60:
		parts = append(parts, "Business type may require additional evaluation")
	}

	switch {
	case f.VolumeScore >= 80:
		parts = append(parts, "High estimated order volume")
	case f.VolumeScore < 50:
		parts = append(parts, "Lower volume potential - consider starter program")
	}

	switch {
	case f.InfrastructureScore >= 70:
		parts = append(parts, "Good infrastructure (refrigeration, POS)")
	case f.InfrastructureScore < 50:
		parts = append(parts, "Infrastructure may need enhancement")
	}

	switch {
	case f.VerificationScore >= 70:
		parts = append(parts, "Well-documented business presence")
	case f.VerificationScore < 50:
		parts = append(parts, "Additional verification recommended")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s risk partner application - standard review recommended.", level)
	}
	return strings.Join(parts, ". ") + "."
}
