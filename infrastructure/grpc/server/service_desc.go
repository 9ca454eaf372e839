package server

import (
	"context"
	"groupchat/api"

	"google.golang.org/grpc"
)

// AuthServiceServer is the server API for the groupchat.v1.AuthService service.
type AuthServiceServer interface {
	Register(context.Context, *api.RegisterRequest) (*api.AuthResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.AuthResponse, error)
	SignInAnonymously(context.Context, *api.SignInAnonymouslyRequest) (*api.AuthResponse, error)
	Me(context.Context, *api.MeRequest) (*api.UserProfile, error)
}

// ChatServiceServer is the server API for the groupchat.v1.ChatService service.
// Subscriptions push a full snapshot of the query result on every change.
type ChatServiceServer interface {
	CreateChat(context.Context, *api.CreateChatRequest) (*api.CreateChatResponse, error)
	ListChats(context.Context, *api.ListChatsRequest) (*api.ListChatsResponse, error)
	SendMessage(context.Context, *api.SendMessageRequest) (*api.SendMessageResponse, error)
	ListMessages(context.Context, *api.ListMessagesRequest) (*api.ListMessagesResponse, error)
	SubscribeMessages(*api.SubscribeMessagesRequest, grpc.ServerStreamingServer[api.ListMessagesResponse]) error
	SubscribeChats(*api.SubscribeChatsRequest, grpc.ServerStreamingServer[api.ListChatsResponse]) error
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: api.AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: _AuthService_Register_Handler},
		{MethodName: "Login", Handler: _AuthService_Login_Handler},
		{MethodName: "SignInAnonymously", Handler: _AuthService_SignInAnonymously_Handler},
		{MethodName: "Me", Handler: _AuthService_Me_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "groupchat/v1/auth",
}

var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ChatServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateChat", Handler: _ChatService_CreateChat_Handler},
		{MethodName: "ListChats", Handler: _ChatService_ListChats_Handler},
		{MethodName: "SendMessage", Handler: _ChatService_SendMessage_Handler},
		{MethodName: "ListMessages", Handler: _ChatService_ListMessages_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "SubscribeMessages", Handler: _ChatService_SubscribeMessages_Handler, ServerStreams: true},
		{StreamName: "SubscribeChats", Handler: _ChatService_SubscribeChats_Handler, ServerStreams: true},
	},
	Metadata: "groupchat/v1/chat",
}

// unaryHandler decodes the request then runs call through the interceptor chain.
func unaryHandler[S any, Req any, Res any](srv any, ctx context.Context, dec func(any) error,
	interceptor grpc.UnaryServerInterceptor, fullMethod string,
	call func(S, context.Context, *Req) (*Res, error)) (any, error) {
	in := new(Req)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return call(srv.(S), ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return call(srv.(S), ctx, req.(*Req))
	}
	return interceptor(ctx, in, info, handler)
}

func _AuthService_Register_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.AuthService_Register_FullMethodName, AuthServiceServer.Register)
}

func _AuthService_Login_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.AuthService_Login_FullMethodName, AuthServiceServer.Login)
}

func _AuthService_SignInAnonymously_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.AuthService_SignInAnonymously_FullMethodName, AuthServiceServer.SignInAnonymously)
}

func _AuthService_Me_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.AuthService_Me_FullMethodName, AuthServiceServer.Me)
}

func _ChatService_CreateChat_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.ChatService_CreateChat_FullMethodName, ChatServiceServer.CreateChat)
}

func _ChatService_ListChats_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.ChatService_ListChats_FullMethodName, ChatServiceServer.ListChats)
}

func _ChatService_SendMessage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.ChatService_SendMessage_FullMethodName, ChatServiceServer.SendMessage)
}

func _ChatService_ListMessages_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unaryHandler(srv, ctx, dec, interceptor, api.ChatService_ListMessages_FullMethodName, ChatServiceServer.ListMessages)
}

func _ChatService_SubscribeMessages_Handler(srv any, stream grpc.ServerStream) error {
	m := new(api.SubscribeMessagesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).SubscribeMessages(m,
		&grpc.GenericServerStream[api.SubscribeMessagesRequest, api.ListMessagesResponse]{ServerStream: stream})
}

func _ChatService_SubscribeChats_Handler(srv any, stream grpc.ServerStream) error {
	m := new(api.SubscribeChatsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).SubscribeChats(m,
		&grpc.GenericServerStream[api.SubscribeChatsRequest, api.ListChatsResponse]{ServerStream: stream})
}
