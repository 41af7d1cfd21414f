package ai_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/nyashahama/partner-risk-engine/internal/ai"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubCompleter struct {
	out    string
	err    error
	calls  int
	prompt string
	opts   ai.CompletionOpts
	block  bool
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts ai.CompletionOpts) (string, error) {
	s.calls++
	s.prompt = prompt
	s.opts = opts
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.out, s.err
}

type stubRecorder struct {
	reasons []string
}

func (r *stubRecorder) AIFallback(reason string) { r.reasons = append(r.reasons, reason) }

// discardLogger returns a *slog.Logger that silently drops all log output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// baseResult is a rule-based result with score 60, Medium.
func baseResult() scoring.Result {
	return scoring.Result{
		Score:       60,
		RiskLevel:   scoring.RiskMedium,
		Explanation: "rule explanation.",
		ScoringFactors: scoring.Factors{
			BusinessTypeScore: 70, LocationScore: 50, VolumeScore: 60,
			InfrastructureScore: 55, VerificationScore: 60,
		},
	}
}

// ─── Enabled / no credential ──────────────────────────────────────────────────

func TestAugmenter_NilCompleter_NoCall(t *testing.T) {
	aug := ai.NewAugmenter(nil, ai.AugmenterConfig{}, discardLogger())
	if aug.Enabled() {
		t.Fatal("augmenter without completer should not be enabled")
	}

	base := baseResult()
	got, used := aug.Augment(context.Background(), scoring.ApplicationData{}, base)
	if used {
		t.Error("expected AI not to contribute")
	}
	if !reflect.DeepEqual(got, base) {
		t.Errorf("expected base unchanged, got %+v", got)
	}
}

func TestAugmenter_NilReceiverIsDisabled(t *testing.T) {
	var aug *ai.Augmenter
	if aug.Enabled() {
		t.Error("nil augmenter should report disabled")
	}
}

// ─── Blend ────────────────────────────────────────────────────────────────────

func TestAugmenter_BlendWithoutRiskLevel(t *testing.T) {
	stub := &stubCompleter{out: `{"score": 80, "explanation": "Great fit for the smoothie line."}`}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{Temperature: 0.3, MaxTokens: 200}, discardLogger())

	got, used := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
	if !used {
		t.Fatal("expected AI to contribute")
	}
	if got.Score != 70 {
		t.Errorf("score: got %d, want 70", got.Score)
	}
	if got.RiskLevel != scoring.RiskLow {
		t.Errorf("risk level: got %q, want Low", got.RiskLevel)
	}
	if got.Explanation != "Great fit for the smoothie line." {
		t.Errorf("explanation: got %q", got.Explanation)
	}
	if got.AIRiskOverride {
		t.Error("no override expected when the model omits riskLevel")
	}
	if !reflect.DeepEqual(got.ScoringFactors, baseResult().ScoringFactors) {
		t.Error("factors must stay the rule-based breakdown")
	}
	if stub.opts.Temperature != 0.3 || stub.opts.MaxTokens != 200 {
		t.Errorf("opts not forwarded: %+v", stub.opts)
	}
}

func TestAugmenter_BlendRoundsHalfUp(t *testing.T) {
	stub := &stubCompleter{out: `{"score": 81}`}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{}, discardLogger())

	got, _ := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
	// (81 + 60) / 2 = 70.5
	if got.Score != 71 {
		t.Errorf("score: got %d, want 71", got.Score)
	}
	if got.Explanation != "rule explanation." {
		t.Errorf("explanation should fall back to rules, got %q", got.Explanation)
	}
}

func TestAugmenter_RiskLevelOverride(t *testing.T) {
	stub := &stubCompleter{out: "```json\n{\"score\": 80, \"riskLevel\": \"medium\"}\n```"}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{}, discardLogger())

	got, used := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
	if !used {
		t.Fatal("expected AI to contribute")
	}
	if got.RiskLevel != scoring.RiskMedium {
		t.Errorf("risk level: got %q, want Medium", got.RiskLevel)
	}
	if !got.AIRiskOverride {
		t.Error("expected override to be flagged")
	}
}

func TestAugmenter_InvalidRiskLevelIgnored(t *testing.T) {
	stub := &stubCompleter{out: `{"score": 20, "riskLevel": "Catastrophic"}`}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{}, discardLogger())

	got, _ := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
	// (20 + 60) / 2 = 40
	if got.Score != 40 || got.RiskLevel != scoring.RiskHigh || got.AIRiskOverride {
		t.Errorf("got %+v", got)
	}
}

func TestAugmenter_StringScoreAndClamp(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want int
	}{
		{"numeric string", `{"score": "90"}`, 75},
		{"above range", `{"score": 400}`, 80},
		{"below range", `{"score": -50}`, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aug := ai.NewAugmenter(&stubCompleter{out: tt.out}, ai.AugmenterConfig{}, discardLogger())
			got, used := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
			if !used || got.Score != tt.want {
				t.Errorf("got score %d (used=%v), want %d", got.Score, used, tt.want)
			}
		})
	}
}

// ─── Fallback ─────────────────────────────────────────────────────────────────

func TestAugmenter_FailuresReturnRuleBasedResult(t *testing.T) {
	app := scoring.ApplicationData{BusinessType: "Juice Bar", City: "Austin", State: "TX"}
	want := scoring.Score(app)

	tests := []struct {
		name   string
		stub   *stubCompleter
		reason string
	}{
		{"request error", &stubCompleter{err: errors.New("connection refused")}, ai.ReasonRequest},
		{"empty completion", &stubCompleter{err: ai.ErrEmptyCompletion}, ai.ReasonEmpty},
		{"prose", &stubCompleter{out: "I think this partner is great!"}, ai.ReasonParse},
		{"missing score", &stubCompleter{out: `{"riskLevel": "Low"}`}, ai.ReasonParse},
		{"boolean score", &stubCompleter{out: `{"score": true}`}, ai.ReasonParse},
		{"non-numeric string score", &stubCompleter{out: `{"score": "high"}`}, ai.ReasonParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stubRecorder{}
			aug := ai.NewAugmenter(tt.stub, ai.AugmenterConfig{Recorder: rec}, discardLogger())

			got, used := aug.Score(context.Background(), app)
			if used {
				t.Error("expected AI not to contribute")
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %+v\nwant %+v", got, want)
			}
			if len(rec.reasons) != 1 || rec.reasons[0] != tt.reason {
				t.Errorf("recorded reasons %v, want [%s]", rec.reasons, tt.reason)
			}
		})
	}
}

func TestAugmenter_Timeout(t *testing.T) {
	rec := &stubRecorder{}
	stub := &stubCompleter{block: true}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{Timeout: 20 * time.Millisecond, Recorder: rec}, discardLogger())

	start := time.Now()
	got, used := aug.Augment(context.Background(), scoring.ApplicationData{}, baseResult())
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout was not applied")
	}
	if used || !reflect.DeepEqual(got, baseResult()) {
		t.Errorf("expected base result after timeout, got %+v", got)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != ai.ReasonTimeout {
		t.Errorf("recorded reasons %v, want [timeout]", rec.reasons)
	}
}

func TestAugmenter_PromptCarriesApplication(t *testing.T) {
	stub := &stubCompleter{out: `{"score": 50}`}
	aug := ai.NewAugmenter(stub, ai.AugmenterConfig{}, discardLogger())

	aug.Score(context.Background(), scoring.ApplicationData{BusinessType: "Juice Bar"})
	if stub.calls != 1 {
		t.Fatalf("expected one call, got %d", stub.calls)
	}
	if stub.prompt != ai.BuildPrompt(scoring.ApplicationData{BusinessType: "Juice Bar"}) {
		t.Error("augmenter should send the built prompt")
	}
}
