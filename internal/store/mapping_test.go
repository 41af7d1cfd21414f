package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/partner-risk-engine/internal/db"
	"github.com/nyashahama/partner-risk-engine/internal/scoring"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// stubQuerier implements db.Querier with canned rows so row mapping and
// error translation can be tested without Postgres.
type stubQuerier struct {
	partner    db.RetailPartner
	partnerErr error
	latest     db.PartnerScoring
	latestErr  error
	inserted   db.InsertPartnerScoringParams
	updateRows int64
	updateErr  error
}

func (s *stubQuerier) CreatePartner(_ context.Context, arg db.CreatePartnerParams) (db.RetailPartner, error) {
	return db.RetailPartner{ID: uuid.New(), CompanyName: arg.CompanyName, Status: arg.Status, ApplicationData: arg.ApplicationData}, nil
}

func (s *stubQuerier) GetLatestScoringByPartner(context.Context, uuid.UUID) (db.PartnerScoring, error) {
	return s.latest, s.latestErr
}

func (s *stubQuerier) GetPartnerByID(context.Context, uuid.UUID) (db.RetailPartner, error) {
	return s.partner, s.partnerErr
}

func (s *stubQuerier) InsertPartnerScoring(_ context.Context, arg db.InsertPartnerScoringParams) (db.PartnerScoring, error) {
	s.inserted = arg
	return db.PartnerScoring{
		ID:             uuid.New(),
		Seq:            1,
		PartnerID:      arg.PartnerID,
		Score:          arg.Score,
		RiskLevel:      arg.RiskLevel,
		ScoringFactors: arg.ScoringFactors,
		Explanation:    arg.Explanation,
		ScoredBy:       arg.ScoredBy,
		CreatedAt:      arg.CreatedAt,
	}, nil
}

func (s *stubQuerier) ListPartnersByStatus(context.Context, string) ([]db.RetailPartner, error) {
	return []db.RetailPartner{s.partner}, s.partnerErr
}

func (s *stubQuerier) ListScoringsWithPartner(context.Context) ([]db.ListScoringsWithPartnerRow, error) {
	return nil, nil
}

func (s *stubQuerier) UpdatePartnerScore(context.Context, db.UpdatePartnerScoreParams) (int64, error) {
	return s.updateRows, s.updateErr
}

func TestGetPartner_TranslatesNoRows(t *testing.T) {
	st := store.New(nil, &stubQuerier{partnerErr: sql.ErrNoRows})
	if _, err := st.GetPartner(context.Background(), uuid.New()); !errors.Is(err, store.ErrPartnerNotFound) {
		t.Errorf("expected ErrPartnerNotFound, got %v", err)
	}
}

func TestGetPartner_OtherErrorsAreNotNotFound(t *testing.T) {
	st := store.New(nil, &stubQuerier{partnerErr: errors.New("connection reset")})
	_, err := st.GetPartner(context.Background(), uuid.New())
	if err == nil || errors.Is(err, store.ErrPartnerNotFound) {
		t.Errorf("expected a generic error, got %v", err)
	}
}

func TestGetPartner_MalformedApplicationIsEmpty(t *testing.T) {
	st := store.New(nil, &stubQuerier{partner: db.RetailPartner{
		ID:              uuid.New(),
		ApplicationData: pqtype.NullRawMessage{RawMessage: json.RawMessage(`[1,2,3]`), Valid: true},
		LatestScore:     sql.NullInt16{Int16: 64, Valid: true},
		RiskLevel:       sql.NullString{String: "Medium", Valid: true},
	}})
	p, err := st.GetPartner(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetPartner: %v", err)
	}
	if p.Application.BusinessType != "" {
		t.Errorf("expected empty application, got %+v", p.Application)
	}
	if p.LatestScore == nil || *p.LatestScore != 64 || p.RiskLevel != scoring.RiskMedium {
		t.Errorf("summary: %v %q", p.LatestScore, p.RiskLevel)
	}
}

func TestLatestScoring_TranslatesNoRows(t *testing.T) {
	st := store.New(nil, &stubQuerier{latestErr: sql.ErrNoRows})
	if _, err := st.LatestScoring(context.Background(), uuid.New()); !errors.Is(err, store.ErrNoScoring) {
		t.Errorf("expected ErrNoScoring, got %v", err)
	}
}

func TestInsertScoring_MapsFields(t *testing.T) {
	q := &stubQuerier{}
	st := store.New(nil, q)

	res := scoring.Score(scoring.ApplicationData{BusinessType: "Gym"})
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pid := uuid.New()

	rec, err := st.InsertScoring(context.Background(), store.NewScoring{
		PartnerID: pid, Result: res, ScoredBy: store.ProvenanceBatch, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("InsertScoring: %v", err)
	}
	if q.inserted.ScoredBy != "batch" || q.inserted.Score != int16(res.Score) || !q.inserted.CreatedAt.Equal(at) {
		t.Errorf("insert params: %+v", q.inserted)
	}
	var f scoring.Factors
	if err := json.Unmarshal(q.inserted.ScoringFactors, &f); err != nil {
		t.Fatalf("stored factors are not JSON: %v", err)
	}
	if f.BusinessTypeScore != 85 {
		t.Errorf("stored business type score: got %d", f.BusinessTypeScore)
	}
	if !rec.ID.Valid || rec.PartnerID != pid || rec.ScoringFactors.BusinessTypeScore != 85 {
		t.Errorf("record: %+v", rec)
	}
}

func TestUpdatePartnerSummary_ZeroRowsIsNotFound(t *testing.T) {
	st := store.New(nil, &stubQuerier{updateRows: 0})
	err := st.UpdatePartnerSummary(context.Background(), uuid.New(), 50, scoring.RiskMedium, time.Now())
	if !errors.Is(err, store.ErrPartnerNotFound) {
		t.Errorf("expected ErrPartnerNotFound, got %v", err)
	}
}

func TestScoringRecord_NullIDMarshalsNull(t *testing.T) {
	b, err := json.Marshal(store.ScoringRecord{PartnerID: uuid.New(), ScoredBy: store.ProvenanceRules})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["id"]; !ok || v != nil {
		t.Errorf("expected id: null, got %v", m["id"])
	}
}
