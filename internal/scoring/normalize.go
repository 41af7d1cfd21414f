package scoring

import (
	"strings"
	"unicode"
)

// ─── LOOKUP TABLES ────────────────────────────────────────────────────────────
// Tables are scanned in declaration order and the first match wins. Order is
// part of the contract: "coffee_shop" must be tested after "cafe", and the
// catch-all "other" last.

type bucket struct {
	key   string
	score int
}

var businessTypeScores = []bucket{
	{"cafe", 90},
	{"coffee_shop", 90},
	{"juice_bar", 95},
	{"smoothie_bar", 100},
	{"gym", 85},
	{"fitness_center", 85},
	{"health_food_store", 80},
	{"grocery", 75},
	{"restaurant", 70},
	{"hotel", 65},
	{"spa", 70},
	{"retail", 60},
	{"convenience_store", 55},
	{"other", 50},
}

var volumeScores = []bucket{
	{"under_500", 40},
	{"500_1000", 60},
	{"1000_2500", 75},
	{"2500_5000", 85},
	{"5000_10000", 95},
	{"over_10000", 100},
}

var yearsScores = []bucket{
	{"less_than_1", 40},
	{"1_3", 60},
	{"3_5", 75},
	{"5_10", 90},
	{"over_10", 100},
}

// threshold maps a number strictly below limit to score. The last entry of a
// threshold list is the ceiling score for anything at or above every limit.
type threshold struct {
	limit int
	score int
}

var volumeThresholds = []threshold{
	{500, 40},
	{1000, 60},
	{2500, 75},
	{5000, 85},
	{10000, 95},
}

const volumeCeiling = 100

var yearsThresholds = []threshold{
	{1, 40},
	{3, 60},
	{5, 75},
	{10, 90},
}

const yearsCeiling = 100

// ─── DEFAULTS & INCREMENTS ────────────────────────────────────────────────────

const (
	defaultSubScore = 50

	infraBase          = 50
	infraRefrigeration = 20
	infraPOS           = 15
	infraPerLocation   = 5
	infraLocationCap   = 15

	verifyBase      = 30
	verifyEmail     = 20
	verifyWebsite   = 20
	verifySocial    = 10
	verifyDocuments = 20

	locationKnown   = 70
	locationUnknown = 50

	maxSubScore = 100

	// saturateDigits caps digit runs so huge numbers never overflow; anything
	// with more digits lands above every threshold.
	saturateDigits = 9
)

var freeMailProviders = []string{"gmail", "yahoo", "hotmail"}

// ─── NORMALISATION ────────────────────────────────────────────────────────────

// normalize lower-cases s and replaces every character outside [a-z0-9] with
// an underscore. Whitespace-only input normalizes to "".
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// firstNumber returns the first run of ASCII digits in s.
func firstNumber(s string) (int, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	n := 0
	for i, r := range s[start:] {
		if !isDigit(r) {
			break
		}
		if i >= saturateDigits {
			return 1_000_000_000, true
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// leadingInt mimics a lenient integer parse: optional leading whitespace and
// sign, then digits, ignoring anything after them.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := strings.IndexFunc(s, func(r rune) bool { return !isDigit(r) })
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return 0, false
	}
	if end > saturateDigits {
		end = saturateDigits
	}
	n := 0
	for _, r := range s[:end] {
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func bucketByThreshold(n int, table []threshold, ceiling int) int {
	for _, t := range table {
		if n < t.limit {
			return t.score
		}
	}
	return ceiling
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxSubScore {
		return maxSubScore
	}
	return v
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

// ─── SUB-SCORES ───────────────────────────────────────────────────────────────

// BusinessTypeScore matches the normalized business type against the table in
// both directions: the input contains the key, or the key contains the input.
func BusinessTypeScore(businessType string) int {
	n := normalize(businessType)
	if n == "" {
		return defaultSubScore
	}
	for _, b := range businessTypeScores {
		if strings.Contains(n, b.key) || strings.Contains(b.key, n) {
			return b.score
		}
	}
	return defaultSubScore
}

// VolumeScore matches a volume bucket key, falling back to the first number
// found in the raw text.
func VolumeScore(volume string) int {
	return bucketOrNumber(volume, volumeScores, volumeThresholds, volumeCeiling)
}

// YearsScore matches a years-in-business bucket key, falling back to the first
// number found in the raw text.
func YearsScore(years string) int {
	return bucketOrNumber(years, yearsScores, yearsThresholds, yearsCeiling)
}

func bucketOrNumber(raw string, buckets []bucket, table []threshold, ceiling int) int {
	n := normalize(raw)
	if n == "" {
		return defaultSubScore
	}
	for _, b := range buckets {
		if strings.Contains(n, b.key) {
			return b.score
		}
	}
	if num, ok := firstNumber(raw); ok {
		return bucketByThreshold(num, table, ceiling)
	}
	return defaultSubScore
}

// InfrastructureScore rewards refrigeration, a real POS system, and multiple
// locations, capped at 100.
func InfrastructureScore(a ApplicationData) int {
	score := infraBase
	if a.HasRefrigeration != nil && *a.HasRefrigeration {
		score += infraRefrigeration
	}
	if pos := strings.TrimSpace(a.POSSystem); pos != "" && !strings.EqualFold(pos, "none") {
		score += infraPOS
	}
	if present(a.NumberOfLocations) {
		locations, ok := leadingInt(a.NumberOfLocations)
		if !ok || locations < 1 {
			locations = 1
		}
		bonus := infraLocationCap
		if locations < infraLocationCap/infraPerLocation {
			bonus = locations * infraPerLocation
		}
		score += bonus
	}
	return clampScore(score)
}

// VerificationScore rewards a business (non free-mail) email, a website, a
// social handle, and uploaded documents, capped at 100. An application that
// supplies none of these four scores the neutral default instead of the base.
func VerificationScore(a ApplicationData) int {
	if !present(a.BusinessEmail) && !present(a.Website) &&
		!present(a.InstagramHandle) && len(a.VerificationDocuments) == 0 {
		return defaultSubScore
	}

	score := verifyBase
	if businessEmail(a.BusinessEmail) {
		score += verifyEmail
	}
	if w := strings.ToLower(strings.TrimSpace(a.Website)); w != "" &&
		(strings.Contains(w, "http") || strings.Contains(w, "www")) {
		score += verifyWebsite
	}
	if present(a.InstagramHandle) {
		score += verifySocial
	}
	if len(a.VerificationDocuments) > 0 {
		score += verifyDocuments
	}
	return clampScore(score)
}

func businessEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || !strings.Contains(e, "@") {
		return false
	}
	for _, p := range freeMailProviders {
		if strings.Contains(e, p) {
			return false
		}
	}
	return true
}

// LocationScore is 70 when both city and state are known, 50 otherwise.
func LocationScore(a ApplicationData) int {
	if present(a.City) && present(a.State) {
		return locationKnown
	}
	return locationUnknown
}
