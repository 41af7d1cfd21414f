package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/config"
	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// fakeStore satisfies orchestrator.Store with one partner and no history.
type fakeStore struct {
	partner store.Partner
	records []store.ScoringRecord
}

func (f *fakeStore) GetPartner(_ context.Context, id uuid.UUID) (store.Partner, error) {
	if id != f.partner.ID {
		return store.Partner{}, store.ErrPartnerNotFound
	}
	return f.partner, nil
}

func (f *fakeStore) LatestScoring(_ context.Context, id uuid.UUID) (store.ScoringRecord, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].PartnerID == id {
			return f.records[i], nil
		}
	}
	return store.ScoringRecord{}, store.ErrNoScoring
}

func (f *fakeStore) ListPartnersByStatus(_ context.Context, status string) ([]store.Partner, error) {
	if f.partner.Status != status {
		return nil, nil
	}
	return []store.Partner{f.partner}, nil
}

func (f *fakeStore) InsertScoring(_ context.Context, n store.NewScoring) (store.ScoringRecord, error) {
	rec := store.ScoringRecord{
		ID:             uuid.NullUUID{UUID: uuid.New(), Valid: true},
		PartnerID:      n.PartnerID,
		Score:          n.Result.Score,
		RiskLevel:      n.Result.RiskLevel,
		ScoringFactors: n.Result.ScoringFactors,
		Explanation:    n.Result.Explanation,
		ScoredBy:       n.ScoredBy,
		CreatedAt:      n.CreatedAt,
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) UpdatePartnerSummary(context.Context, uuid.UUID, int, scoring.RiskLevel, time.Time) error {
	return nil
}

func (f *fakeStore) ListScorings(context.Context) ([]store.ListedScoring, error) {
	out := make([]store.ListedScoring, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		out = append(out, store.ListedScoring{ScoringRecord: f.records[i]})
	}
	return out, nil
}

func run(t *testing.T, o *options, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(o)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func emptyConfig() (*config.Config, error) { return &config.Config{}, nil }

// unconfigured builds the real app graph with no database.
func unconfigured() *options {
	return &options{open: app.New, loadCfg: emptyConfig}
}

// withFake serves commands from a fakeStore holding one pending partner.
func withFake(f *fakeStore) *options {
	return &options{
		loadCfg: emptyConfig,
		open: func(_ context.Context, _ *config.Config, logger *slog.Logger) (*app.App, error) {
			return &app.App{Service: orchestrator.New(f, logger)}, nil
		},
	}
}

func newFake() *fakeStore {
	return &fakeStore{partner: store.Partner{
		ID:          uuid.New(),
		Status:      "pending",
		Application: scoring.ApplicationData{BusinessType: "cafe", City: "Austin", State: "TX"},
	}}
}

func TestVersion(t *testing.T) {
	out, err := run(t, unconfigured(), "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "scorectl dev") {
		t.Errorf("got %q", out)
	}
}

func TestScore_RequiresOneArg(t *testing.T) {
	if _, err := run(t, unconfigured(), "score"); err == nil {
		t.Error("expected argument error")
	}
}

func TestScore_NotConfigured(t *testing.T) {
	_, err := run(t, unconfigured(), "score", uuid.NewString())
	if !errors.Is(err, orchestrator.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestScore_PrintsResultThenCached(t *testing.T) {
	f := newFake()
	id := f.partner.ID.String()

	out, err := run(t, withFake(f), "score", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "\n  \"scoring\": {") {
		t.Errorf("expected indented JSON, got:\n%s", out)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if first["saved"] != true || first["cached"] != nil {
		t.Errorf("unexpected first output: %v", first)
	}

	out, err = run(t, withFake(f), "score", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var second map[string]any
	_ = json.Unmarshal([]byte(out), &second)
	if second["cached"] != true {
		t.Errorf("expected cached result, got %v", second)
	}

	if _, err := run(t, withFake(f), "score", id, "--force"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.records) != 2 {
		t.Errorf("--force should write a second record, have %d", len(f.records))
	}
}

func TestBatchLatestAndList(t *testing.T) {
	f := newFake()

	out, err := run(t, withFake(f), "batch")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var batch orchestrator.BatchOutcome
	if err := json.Unmarshal([]byte(out), &batch); err != nil {
		t.Fatalf("batch output: %v", err)
	}
	if batch.Processed != 1 {
		t.Errorf("processed: got %d, want 1", batch.Processed)
	}

	out, err = run(t, withFake(f), "latest", f.partner.ID.String())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.Contains(out, `"scored_by": "batch"`) {
		t.Errorf("latest output: %s", out)
	}

	out, err = run(t, withFake(f), "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list struct {
		Scores []json.RawMessage `json:"scores"`
	}
	_ = json.Unmarshal([]byte(out), &list)
	if len(list.Scores) != 1 {
		t.Errorf("list: got %d scores", len(list.Scores))
	}
}

func TestLatest_NeverScoredPrintsNull(t *testing.T) {
	f := newFake()
	out, err := run(t, withFake(f), "latest", f.partner.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"scoring": null`) {
		t.Errorf("got %s", out)
	}
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	_, err := run(t, unconfigured(), "migrate")
	if !errors.Is(err, errNoDatabase) {
		t.Errorf("expected errNoDatabase, got %v", err)
	}
}

func TestPartnerAdd_Validation(t *testing.T) {
	if _, err := run(t, unconfigured(), "partner", "add", "--company", "Blend Co"); err == nil {
		t.Error("expected missing --email error")
	}

	bad := filepath.Join(t.TempDir(), "app.json")
	if err := os.WriteFile(bad, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, unconfigured(), "partner", "add", "--company", "Blend Co", "--email", "a@b.co", "--application", bad)
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Errorf("expected invalid JSON error, got %v", err)
	}

	_, err = run(t, unconfigured(), "partner", "add", "--company", "Blend Co", "--email", "a@b.co")
	if !errors.Is(err, errNoDatabase) {
		t.Errorf("expected errNoDatabase, got %v", err)
	}
}

func TestConfigErrorIsReported(t *testing.T) {
	o := &options{
		open:    app.New,
		loadCfg: func() (*config.Config, error) { return nil, errors.New("PORT must be numeric") },
	}
	_, err := run(t, o, "batch")
	if err == nil || !strings.Contains(err.Error(), "PORT") {
		t.Errorf("expected config error, got %v", err)
	}
}
