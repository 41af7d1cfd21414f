// Package rpc exposes the scoring orchestrator as the gRPC service
// partnerscoring.v1.PartnerScoringService, using a JSON codec so no generated
// protobuf messages are needed. It also serves the standard gRPC health
// service.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/nyashahama/partner-risk-engine/internal/orchestrator"
	"github.com/nyashahama/partner-risk-engine/internal/store"
)

// Scorer is the orchestrator surface the service needs.
// *orchestrator.Service satisfies it.
type Scorer interface {
	Score(ctx context.Context, req orchestrator.ScoreRequest) (orchestrator.Outcome, error)
	ScoreBatch(ctx context.Context) (orchestrator.BatchOutcome, error)
	Latest(ctx context.Context, partnerID string) (*store.ScoringRecord, error)
	List(ctx context.Context) ([]store.ListedScoring, error)
}

// ─── SERVER ──────────────────────────────────────────────────────────────────

// Server wraps a gRPC server with the scoring service and health registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates the gRPC server. The health service reports SERVING for
// ServiceName from the start.
func NewServer(scorer Scorer, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingInterceptor(logger))}, opts...)
	gs := grpc.NewServer(opts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterPartnerScoringServer(gs, &handler{scorer: scorer, logger: logger})

	return &Server{gs: gs, health: healthSrv, logger: logger}
}

// Serve accepts connections on lis until Stop or GracefulStop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.gs.Stop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logger.Info("grpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// ─── HANDLER ─────────────────────────────────────────────────────────────────

type handler struct {
	scorer Scorer
	logger *slog.Logger
}

func (h *handler) ScorePartner(ctx context.Context, in *ScorePartnerRequest) (*ScorePartnerResponse, error) {
	out, err := h.scorer.Score(ctx, orchestrator.ScoreRequest{
		PartnerID:        in.PartnerID,
		ForceRecalculate: in.ForceRecalculate,
		UseAI:            in.UseAI,
	})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ScorePartnerResponse{
		Scoring:        recordToMessage(out.Record),
		Cached:         out.Cached,
		Saved:          out.Saved,
		PartnerUpdated: out.PartnerUpdated,
		Warning:        out.Warning,
		AIRiskOverride: out.AIRiskOverride,
	}, nil
}

func (h *handler) ScoreBatch(ctx context.Context, _ *ScoreBatchRequest) (*ScoreBatchResponse, error) {
	out, err := h.scorer.ScoreBatch(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := &ScoreBatchResponse{
		Processed: int32(out.Processed),
		Results:   make([]*BatchItem, 0, len(out.Results)),
	}
	for _, item := range out.Results {
		resp.Results = append(resp.Results, &BatchItem{
			PartnerID:      item.PartnerID.String(),
			Score:          int32(item.Score),
			Saved:          item.Saved,
			PartnerUpdated: item.PartnerUpdated,
		})
	}
	return resp, nil
}

func (h *handler) GetLatestScoring(ctx context.Context, in *GetLatestScoringRequest) (*GetLatestScoringResponse, error) {
	rec, err := h.scorer.Latest(ctx, in.PartnerID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	if rec == nil {
		return &GetLatestScoringResponse{}, nil
	}
	return &GetLatestScoringResponse{Scoring: recordToMessage(*rec)}, nil
}

func (h *handler) ListScorings(ctx context.Context, _ *ListScoringsRequest) (*ListScoringsResponse, error) {
	all, err := h.scorer.List(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := &ListScoringsResponse{Scores: make([]*ListedScoring, 0, len(all))}
	for _, l := range all {
		resp.Scores = append(resp.Scores, &ListedScoring{
			Scoring:     recordToMessage(l.ScoringRecord),
			CompanyName: l.Partner.CompanyName,
			Status:      l.Partner.Status,
		})
	}
	return resp, nil
}

// toStatus maps orchestrator sentinels to gRPC codes. Unexpected errors are
// logged and returned as Internal without detail.
func (h *handler) toStatus(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, strings.TrimPrefix(err.Error(), "orchestrator: "))
	case errors.Is(err, orchestrator.ErrPartnerNotFound):
		return status.Error(codes.NotFound, "partner not found")
	case errors.Is(err, orchestrator.ErrNotConfigured):
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		h.logger.Error("grpc internal error", "error", err)
		return status.Error(codes.Internal, "internal server error")
	}
}

func recordToMessage(r store.ScoringRecord) *ScoringRecord {
	msg := &ScoringRecord{
		PartnerID:      r.PartnerID.String(),
		Score:          int32(r.Score),
		RiskLevel:      string(r.RiskLevel),
		ScoringFactors: r.ScoringFactors,
		Explanation:    r.Explanation,
		ScoredBy:       string(r.ScoredBy),
	}
	if r.ID.Valid {
		msg.ID = r.ID.UUID.String()
	}
	if !r.CreatedAt.IsZero() {
		msg.CreatedAt = timestamppb.New(r.CreatedAt)
	}
	return msg
}
