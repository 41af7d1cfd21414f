package ai

import (
	"fmt"
	"strings"

	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

const promptHeader = `You are an expert B2B partnership analyst for a wellness smoothie company. Analyze this retail partner application and provide a risk assessment.`

const promptInstructions = `Provide a JSON response with:
1. "score": A number from 0-100 representing partner fit
2. "riskLevel": One of "Low", "Medium", or "High"
3. "explanation": A brief 1-2 sentence explanation of the score

Consider:
- Juice bars, smoothie bars, cafes, and gyms are ideal partners (higher scores)
- Higher volume potential = higher scores
- Longer business history = more reliable
- Good infrastructure (refrigeration, modern POS) = easier operations
- Verified business presence (website, social media, documents) = lower risk

Respond ONLY with valid JSON, no markdown or additional text.`

// BuildPrompt renders every known application field, with explicit
// placeholders for the ones that are missing.
func BuildPrompt(a scoring.ApplicationData) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString("\n\nApplication Data:\n")

	fmt.Fprintf(&sb, "- Business Type: %s\n", or(a.BusinessType, "Not specified"))
	fmt.Fprintf(&sb, "- Business Name: %s\n", or(a.LegalBusinessName, "Not specified"))
	fmt.Fprintf(&sb, "- Location: %s, %s, %s\n", or(a.City, "Unknown"), or(a.State, "Unknown"), or(a.Country, "Unknown"))
	fmt.Fprintf(&sb, "- Years in Business: %s\n", or(a.YearsInBusiness, "Not specified"))
	fmt.Fprintf(&sb, "- Estimated Monthly Volume: %s\n", or(a.EstimatedMonthlyVolume, "Not specified"))
	fmt.Fprintf(&sb, "- Number of Locations: %s\n", or(a.NumberOfLocations, "1"))
	fmt.Fprintf(&sb, "- Average Foot Traffic: %s\n", or(a.AverageFootTraffic, "Not specified"))
	fmt.Fprintf(&sb, "- Has Refrigeration: %s\n", yesNo(a.HasRefrigeration))
	fmt.Fprintf(&sb, "- POS System: %s\n", or(a.POSSystem, "Not specified"))
	fmt.Fprintf(&sb, "- Website: %s\n", or(a.Website, "None"))
	fmt.Fprintf(&sb, "- Instagram: %s\n", or(a.InstagramHandle, "None"))
	fmt.Fprintf(&sb, "- Has Verification Documents: %s\n", yesNoCount(len(a.VerificationDocuments)))

	sb.WriteString("\n")
	sb.WriteString(promptInstructions)
	return sb.String()
}

func or(s, placeholder string) string {
	if s = strings.TrimSpace(s); s == "" {
		return placeholder
	}
	return s
}

func yesNo(b *bool) string {
	if b != nil && *b {
		return "Yes"
	}
	return "No/Unknown"
}

func yesNoCount(n int) string {
	if n > 0 {
		return "Yes"
	}
	return "No"
}
