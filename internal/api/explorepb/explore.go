// Package explorepb defines the ExploreService wire types and descriptors. Messages are
// encoded as JSON (content-type application/grpc+json), see package codec.
package explorepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	_ "github.com/oggyb/muzz-chat/internal/api/codec"
)

const (
	ServiceName = "muzz.explore.ExploreService"

	ExploreService_ListCandidates_FullMethodName = "/" + ServiceName + "/ListCandidates"
	ExploreService_PutDecision_FullMethodName    = "/" + ServiceName + "/PutDecision"
	ExploreService_ListMatches_FullMethodName    = "/" + ServiceName + "/ListMatches"
)

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
}

type ListCandidatesRequest struct{}

type ListCandidatesResponse struct {
	Candidates []*User `json:"candidates"`
}

type PutDecisionRequest struct {
	RecipientUserId string `json:"recipient_user_id"`
	LikedRecipient  bool   `json:"liked_recipient"`
}

func (x *PutDecisionRequest) GetRecipientUserId() string {
	if x != nil {
		return x.RecipientUserId
	}
	return ""
}

func (x *PutDecisionRequest) GetLikedRecipient() bool {
	if x != nil {
		return x.LikedRecipient
	}
	return false
}

type PutDecisionResponse struct {
	MutualLikes bool `json:"mutual_likes"`
	// AlreadyDecided is set when the recipient had been judged before; the
	// earlier decision stands.
	AlreadyDecided bool `json:"already_decided"`
}

type ListMatchesRequest struct{}

type ListMatchesResponse struct {
	Matches []*User `json:"matches"`
}

// ExploreServiceServer is the server API for ExploreService.
type ExploreServiceServer interface {
	ListCandidates(context.Context, *ListCandidatesRequest) (*ListCandidatesResponse, error)
	PutDecision(context.Context, *PutDecisionRequest) (*PutDecisionResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
}

// UnimplementedExploreServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedExploreServiceServer struct{}

func (UnimplementedExploreServiceServer) ListCandidates(context.Context, *ListCandidatesRequest) (*ListCandidatesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListCandidates not implemented")
}

func (UnimplementedExploreServiceServer) PutDecision(context.Context, *PutDecisionRequest) (*PutDecisionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PutDecision not implemented")
}

func (UnimplementedExploreServiceServer) ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMatches not implemented")
}

func RegisterExploreServiceServer(s grpc.ServiceRegistrar, srv ExploreServiceServer) {
	s.RegisterService(&ExploreService_ServiceDesc, srv)
}

func _ExploreService_ListCandidates_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListCandidatesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).ListCandidates(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExploreService_ListCandidates_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExploreServiceServer).ListCandidates(ctx, req.(*ListCandidatesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExploreService_PutDecision_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutDecisionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).PutDecision(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExploreService_PutDecision_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExploreServiceServer).PutDecision(ctx, req.(*PutDecisionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExploreService_ListMatches_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListMatchesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).ListMatches(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExploreService_ListMatches_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExploreServiceServer).ListMatches(ctx, req.(*ListMatchesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ExploreService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExploreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCandidates", Handler: _ExploreService_ListCandidates_Handler},
		{MethodName: "PutDecision", Handler: _ExploreService_PutDecision_Handler},
		{MethodName: "ListMatches", Handler: _ExploreService_ListMatches_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "explore",
}

// ExploreServiceClient is the client API for ExploreService.
type ExploreServiceClient interface {
	ListCandidates(ctx context.Context, in *ListCandidatesRequest, opts ...grpc.CallOption) (*ListCandidatesResponse, error)
	PutDecision(ctx context.Context, in *PutDecisionRequest, opts ...grpc.CallOption) (*PutDecisionResponse, error)
	ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error)
}

type exploreServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewExploreServiceClient(cc grpc.ClientConnInterface) ExploreServiceClient {
	return &exploreServiceClient{cc}
}

func (c *exploreServiceClient) ListCandidates(ctx context.Context, in *ListCandidatesRequest, opts ...grpc.CallOption) (*ListCandidatesResponse, error) {
	out := new(ListCandidatesResponse)
	if err := c.cc.Invoke(ctx, ExploreService_ListCandidates_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exploreServiceClient) PutDecision(ctx context.Context, in *PutDecisionRequest, opts ...grpc.CallOption) (*PutDecisionResponse, error) {
	out := new(PutDecisionResponse)
	if err := c.cc.Invoke(ctx, ExploreService_PutDecision_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exploreServiceClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	out := new(ListMatchesResponse)
	if err := c.cc.Invoke(ctx, ExploreService_ListMatches_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
