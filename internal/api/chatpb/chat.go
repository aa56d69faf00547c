// Package chatpb defines the ChatService wire types and descriptors. Messages are
// encoded as JSON (content-type application/grpc+json), see package codec.
package chatpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	_ "github.com/oggyb/muzz-chat/internal/api/codec"
)

const (
	ServiceName = "muzz.chat.ChatService"

	ChatService_ListMessages_FullMethodName = "/" + ServiceName + "/ListMessages"
	ChatService_SendMessage_FullMethodName  = "/" + ServiceName + "/SendMessage"
	ChatService_Watch_FullMethodName        = "/" + ServiceName + "/Watch"
)

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
}

type Message struct {
	Id            string `json:"id"`
	SenderId      string `json:"sender_id"`
	ReceiverId    string `json:"receiver_id"`
	Content       string `json:"content"`
	UnixTimestamp uint64 `json:"unix_timestamp"`
}

type ListMessagesRequest struct {
	PartnerUserId string `json:"partner_user_id"`
}

func (x *ListMessagesRequest) GetPartnerUserId() string {
	if x != nil {
		return x.PartnerUserId
	}
	return ""
}

type ListMessagesResponse struct {
	Partner  *User      `json:"partner"`
	Messages []*Message `json:"messages"`
}

type SendMessageRequest struct {
	PartnerUserId string `json:"partner_user_id"`
	Content       string `json:"content"`
}

func (x *SendMessageRequest) GetPartnerUserId() string {
	if x != nil {
		return x.PartnerUserId
	}
	return ""
}

func (x *SendMessageRequest) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

type SendMessageResponse struct {
	Message *Message `json:"message"`
}

type WatchRequest struct {
	PartnerUserId string `json:"partner_user_id"`
}

func (x *WatchRequest) GetPartnerUserId() string {
	if x != nil {
		return x.PartnerUserId
	}
	return ""
}

// MessageEvent is one message of a Watch stream. Backfill marks messages
// that were already in the history when the stream started.
type MessageEvent struct {
	Message  *Message `json:"message"`
	Backfill bool     `json:"backfill"`
}

// ChatServiceServer is the server API for ChatService.
type ChatServiceServer interface {
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	Watch(*WatchRequest, ChatService_WatchServer) error
}

type ChatService_WatchServer = grpc.ServerStreamingServer[MessageEvent]
type ChatService_WatchClient = grpc.ServerStreamingClient[MessageEvent]

// UnimplementedChatServiceServer can be embedded to have forward compatible
// implementations.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMessages not implemented")
}

func (UnimplementedChatServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendMessage not implemented")
}

func (UnimplementedChatServiceServer) Watch(*WatchRequest, ChatService_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func _ChatService_ListMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListMessagesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).ListMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_ListMessages_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).ListMessages(ctx, req.(*ListMessagesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_SendMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).SendMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChatService_SendMessage_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).SendMessage(ctx, req.(*SendMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(WatchRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).Watch(m, &grpc.GenericServerStream[WatchRequest, MessageEvent]{ServerStream: stream})
}

var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListMessages", Handler: _ChatService_ListMessages_Handler},
		{MethodName: "SendMessage", Handler: _ChatService_SendMessage_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: _ChatService_Watch_Handler, ServerStreams: true},
	},
	Metadata: "chat",
}

// ChatServiceClient is the client API for ChatService.
type ChatServiceClient interface {
	ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func (c *chatServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	out := new(ListMessagesResponse)
	if err := c.cc.Invoke(ctx, ChatService_ListMessages_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	out := new(SendMessageResponse)
	if err := c.cc.Invoke(ctx, ChatService_SendMessage_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (ChatService_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_Watch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, MessageEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
