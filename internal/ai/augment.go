package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// Fallback reasons reported to the Recorder.
const (
	ReasonTimeout = "timeout"
	ReasonRequest = "request"
	ReasonEmpty   = "empty"
	ReasonParse   = "parse"
)

// Recorder receives one call per AI attempt that fell back to the rule-based
// result. The metrics package implements it.
type Recorder interface {
	AIFallback(reason string)
}

// AugmenterConfig holds the generation parameters and the bounded timeout
// applied to every completion call.
type AugmenterConfig struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	Recorder    Recorder
}

// Augmenter blends a model verdict into a rule-based scoring result. It never
// returns an error: any problem yields the rule-based result unchanged.
type Augmenter struct {
	completer Completer
	cfg       AugmenterConfig
	logger    *slog.Logger
}

// NewAugmenter returns an Augmenter. A nil completer is valid and means AI
// scoring is not configured; Augment then never attempts a network call.
func NewAugmenter(c Completer, cfg AugmenterConfig, logger *slog.Logger) *Augmenter {
	return &Augmenter{completer: c, cfg: cfg, logger: logger}
}

// Enabled reports whether a credential-backed completer is configured.
func (a *Augmenter) Enabled() bool {
	return a != nil && a.completer != nil
}

// Score computes the rule-based result for app and augments it. The boolean
// reports whether the AI verdict contributed.
func (a *Augmenter) Score(ctx context.Context, app scoring.ApplicationData) (scoring.Result, bool) {
	return a.Augment(ctx, app, scoring.Score(app))
}

// Augment asks the model for a verdict on app and blends it with base. The
// boolean reports whether the AI verdict contributed.
func (a *Augmenter) Augment(ctx context.Context, app scoring.ApplicationData, base scoring.Result) (scoring.Result, bool) {
	if !a.Enabled() {
		return base, false
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	raw, err := a.completer.Complete(ctx, BuildPrompt(app), CompletionOpts{
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		a.fallback(classify(ctx, err), err)
		return base, false
	}

	v, err := parseVerdict(raw)
	if err != nil {
		a.fallback(ReasonParse, err)
		return base, false
	}

	out := blend(base, v)
	if out.AIRiskOverride {
		a.logger.Info("ai: risk level overrides score tier",
			"ai_risk_level", out.RiskLevel,
			"score_risk_level", scoring.RiskLevelFor(out.Score),
			"score", out.Score,
		)
	}
	return out, true
}

func (a *Augmenter) fallback(reason string, err error) {
	a.logger.Warn("ai: scoring failed, using rule-based result", "reason", reason, "error", err)
	if a.cfg.Recorder != nil {
		a.cfg.Recorder.AIFallback(reason)
	}
}

func classify(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrEmptyCompletion):
		return ReasonEmpty
	default:
		return ReasonRequest
	}
}

// ─── VERDICT ──────────────────────────────────────────────────────────────────

// verdict is the model's JSON answer after validation. Level is empty when the
// model did not supply a recognised tier.
type verdict struct {
	Score       float64
	Level       scoring.RiskLevel
	Explanation string
}

type verdictJSON struct {
	Score       *json.Number    `json:"score"`
	RiskLevel   json.RawMessage `json:"riskLevel"`
	Explanation json.RawMessage `json:"explanation"`
}

// parseVerdict requires a numeric score (a JSON number or numeric string). The
// tier and explanation are optional and ignored when not strings.
func parseVerdict(raw string) (verdict, error) {
	var vj verdictJSON
	if err := json.Unmarshal([]byte(stripFences(raw)), &vj); err != nil {
		return verdict{}, fmt.Errorf("ai: parse verdict: %w (raw: %.200s)", err, raw)
	}
	if vj.Score == nil {
		return verdict{}, fmt.Errorf("ai: verdict has no score (raw: %.200s)", raw)
	}
	score, err := vj.Score.Float64()
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return verdict{}, fmt.Errorf("ai: verdict score %q is not a number", vj.Score.String())
	}

	v := verdict{Score: math.Max(0, math.Min(100, score))}
	if level, ok := scoring.ParseRiskLevel(jsonString(vj.RiskLevel)); ok {
		v.Level = level
	}
	v.Explanation = jsonString(vj.Explanation)
	return v, nil
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// blend averages the two scores, prefers the model's tier and explanation when
// present, and always keeps the rule-based factor breakdown.
func blend(base scoring.Result, v verdict) scoring.Result {
	score := int(math.Round((v.Score + float64(base.Score)) / 2))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	out := scoring.Result{
		Score:          score,
		RiskLevel:      scoring.RiskLevelFor(score),
		Explanation:    base.Explanation,
		ScoringFactors: base.ScoringFactors,
	}
	if v.Level != "" {
		out.RiskLevel = v.Level
		out.AIRiskOverride = v.Level != scoring.RiskLevelFor(score)
	}
	if v.Explanation != "" {
		out.Explanation = v.Explanation
	}
	return out
}
