package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// ─── POST /api/partners/scoring ───────────────────────────────────────────────

type scoreRequest struct {
	PartnerID        string `json:"partnerId"`
	ForceRecalculate bool   `json:"forceRecalculate"`
}

// scoreResponse is {scoring, cached} for a cache hit and
// {scoring, saved, partnerUpdated, warning?} for a fresh computation.
type scoreResponse struct {
	Scoring        store.ScoringRecord `json:"scoring"`
	Cached         bool                `json:"cached,omitempty"`
	Saved          *bool               `json:"saved,omitempty"`
	PartnerUpdated *bool               `json:"partnerUpdated,omitempty"`
	Warning        string              `json:"warning,omitempty"`
	AIRiskOverride bool                `json:"aiRiskOverride,omitempty"`
}

// handleScorePartner scores one partner. ?useAI=true requests AI blending,
// which only happens when a provider credential is configured.
func (s *Server) handleScorePartner(w http.ResponseWriter, r *http.Request) {
	var body scoreRequest
	if !decode(w, r, &body) {
		return
	}

	useAI, _ := strconv.ParseBool(r.URL.Query().Get("useAI"))

	out, err := s.scorer.Score(r.Context(), orchestrator.ScoreRequest{
		PartnerID:        body.PartnerID,
		ForceRecalculate: body.ForceRecalculate,
		UseAI:            useAI,
	})
	if err != nil {
		s.respondScoringErr(w, r, err)
		return
	}

	resp := scoreResponse{Scoring: out.Record}
	if out.Cached {
		resp.Cached = true
	} else {
		resp.Saved = &out.Saved
		resp.PartnerUpdated = &out.PartnerUpdated
		resp.Warning = out.Warning
		resp.AIRiskOverride = out.AIRiskOverride
	}
	respond(w, http.StatusOK, resp)
}

// ─── POST /api/partners/scoring/batch ─────────────────────────────────────────

// handleScoreBatch rule-scores every pending partner.
func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	out, err := s.scorer.ScoreBatch(r.Context())
	if err != nil {
		s.respondScoringErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, out)
}

// ─── GET /api/partners/scoring ────────────────────────────────────────────────

// handleGetScoring returns {scoring} for ?id=<partner> (null when never
// scored) and {scores} with every record otherwise.
func (s *Server) handleGetScoring(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		s.respondLatest(w, r, id)
		return
	}

	all, err := s.scorer.List(r.Context())
	if err != nil {
		s.respondScoringErr(w, r, err)
		return
	}
	if all == nil {
		all = []store.ListedScoring{}
	}
	respond(w, http.StatusOK, map[string]any{"scores": all})
}

// ─── GET /api/partners/{partnerID}/scoring ────────────────────────────────────

func (s *Server) handleGetPartnerScoring(w http.ResponseWriter, r *http.Request) {
	s.respondLatest(w, r, chi.URLParam(r, "partnerID"))
}

func (s *Server) respondLatest(w http.ResponseWriter, r *http.Request, partnerID string) {
	rec, err := s.scorer.Latest(r.Context(), partnerID)
	if err != nil {
		s.respondScoringErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"scoring": rec})
}
