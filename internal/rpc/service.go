package rpc

// service.go is the hand-maintained equivalent of generated stubs for
// partnerscoring.v1.PartnerScoringService. Messages are plain structs carried
// by the JSON codec.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/nyashahama/partner-risk-engine/internal/scoring"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "partnerscoring.v1.PartnerScoringService"

// ─── MESSAGES ────────────────────────────────────────────────────────────────

type ScorePartnerRequest struct {
	PartnerID        string `json:"partnerId"`
	ForceRecalculate bool   `json:"forceRecalculate,omitempty"`
	UseAI            bool   `json:"useAI,omitempty"`
}

// ScoringRecord mirrors store.ScoringRecord. ID is empty for a record that
// was computed but not saved.
type ScoringRecord struct {
	ID             string                 `json:"id,omitempty"`
	PartnerID      string                 `json:"partnerId"`
	Score          int32                  `json:"score"`
	RiskLevel      string                 `json:"riskLevel"`
	ScoringFactors scoring.Factors        `json:"scoringFactors"`
	Explanation    string                 `json:"explanation"`
	ScoredBy       string                 `json:"scoredBy"`
	CreatedAt      *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type ScorePartnerResponse struct {
	Scoring        *ScoringRecord `json:"scoring"`
	Cached         bool           `json:"cached,omitempty"`
	Saved          bool           `json:"saved,omitempty"`
	PartnerUpdated bool           `json:"partnerUpdated,omitempty"`
	Warning        string         `json:"warning,omitempty"`
	AIRiskOverride bool           `json:"aiRiskOverride,omitempty"`
}

type ScoreBatchRequest struct{}

type BatchItem struct {
	PartnerID      string `json:"partnerId"`
	Score          int32  `json:"score"`
	Saved          bool   `json:"saved"`
	PartnerUpdated bool   `json:"partnerUpdated"`
}

type ScoreBatchResponse struct {
	Processed int32        `json:"processed"`
	Results   []*BatchItem `json:"results"`
}

type GetLatestScoringRequest struct {
	PartnerID string `json:"partnerId"`
}

// GetLatestScoringResponse carries a nil Scoring when the partner has never
// been scored.
type GetLatestScoringResponse struct {
	Scoring *ScoringRecord `json:"scoring"`
}

type ListScoringsRequest struct{}

type ListedScoring struct {
	Scoring     *ScoringRecord `json:"scoring"`
	CompanyName string         `json:"companyName"`
	Status      string         `json:"status"`
}

type ListScoringsResponse struct {
	Scores []*ListedScoring `json:"scores"`
}

// ─── SERVER API ──────────────────────────────────────────────────────────────

// PartnerScoringServer is the server API for PartnerScoringService.
type PartnerScoringServer interface {
	ScorePartner(context.Context, *ScorePartnerRequest) (*ScorePartnerResponse, error)
	ScoreBatch(context.Context, *ScoreBatchRequest) (*ScoreBatchResponse, error)
	GetLatestScoring(context.Context, *GetLatestScoringRequest) (*GetLatestScoringResponse, error)
	ListScorings(context.Context, *ListScoringsRequest) (*ListScoringsResponse, error)
}

// UnimplementedPartnerScoringServer returns Unimplemented for every method.
type UnimplementedPartnerScoringServer struct{}

func (UnimplementedPartnerScoringServer) ScorePartner(context.Context, *ScorePartnerRequest) (*ScorePartnerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScorePartner not implemented")
}
func (UnimplementedPartnerScoringServer) ScoreBatch(context.Context, *ScoreBatchRequest) (*ScoreBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreBatch not implemented")
}
func (UnimplementedPartnerScoringServer) GetLatestScoring(context.Context, *GetLatestScoringRequest) (*GetLatestScoringResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLatestScoring not implemented")
}
func (UnimplementedPartnerScoringServer) ListScorings(context.Context, *ListScoringsRequest) (*ListScoringsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListScorings not implemented")
}

// RegisterPartnerScoringServer registers srv with s.
func RegisterPartnerScoringServer(s grpc.ServiceRegistrar, srv PartnerScoringServer) {
	s.RegisterService(&partnerScoringServiceDesc, srv)
}

var partnerScoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PartnerScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ScorePartner", Handler: scorePartnerHandler},
		{MethodName: "ScoreBatch", Handler: scoreBatchHandler},
		{MethodName: "GetLatestScoring", Handler: getLatestScoringHandler},
		{MethodName: "ListScorings", Handler: listScoringsHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func scorePartnerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ScorePartnerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PartnerScoringServer).ScorePartner(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ScorePartner"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PartnerScoringServer).ScorePartner(ctx, req.(*ScorePartnerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func scoreBatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ScoreBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PartnerScoringServer).ScoreBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ScoreBatch"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PartnerScoringServer).ScoreBatch(ctx, req.(*ScoreBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getLatestScoringHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetLatestScoringRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PartnerScoringServer).GetLatestScoring(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetLatestScoring"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PartnerScoringServer).GetLatestScoring(ctx, req.(*GetLatestScoringRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listScoringsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListScoringsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PartnerScoringServer).ListScorings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListScorings"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PartnerScoringServer).ListScorings(ctx, req.(*ListScoringsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ─── CLIENT ──────────────────────────────────────────────────────────────────

// Client calls PartnerScoringService over a connection. Calls use the JSON
// codec regardless of the connection's defaults.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) ScorePartner(ctx context.Context, in *ScorePartnerRequest, opts ...grpc.CallOption) (*ScorePartnerResponse, error) {
	out := new(ScorePartnerResponse)
	if err := c.invoke(ctx, "ScorePartner", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ScoreBatch(ctx context.Context, in *ScoreBatchRequest, opts ...grpc.CallOption) (*ScoreBatchResponse, error) {
	out := new(ScoreBatchResponse)
	if err := c.invoke(ctx, "ScoreBatch", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLatestScoring(ctx context.Context, in *GetLatestScoringRequest, opts ...grpc.CallOption) (*GetLatestScoringResponse, error) {
	out := new(GetLatestScoringResponse)
	if err := c.invoke(ctx, "GetLatestScoring", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListScorings(ctx context.Context, in *ListScoringsRequest, opts ...grpc.CallOption) (*ListScoringsResponse, error) {
	out := new(ListScoringsResponse)
	if err := c.invoke(ctx, "ListScorings", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
