// Package client is a typed gRPC client for the chat services.
package client

import (
	"context"
	"errors"
	"fmt"
	"groupchat/api"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

var (
	subscribeMessagesDesc = grpc.StreamDesc{StreamName: "SubscribeMessages", ServerStreams: true}
	subscribeChatsDesc    = grpc.StreamDesc{StreamName: "SubscribeChats", ServerStreams: true}
)

type Client struct {
	conn  grpc.ClientConnInterface
	token string
}

// Dial opens a plaintext connection. The returned close function releases it.
func Dial(address string) (*Client, func() error, error) {
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to server at %s: %w", address, err)
	}
	return New(conn), conn.Close, nil
}

// New wraps an existing connection, every call is made with the JSON codec.
func New(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// WithToken returns a client authenticating its calls with token.
func (c *Client) WithToken(token string) *Client {
	return &Client{conn: c.conn, token: token}
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error) {
	out := new(api.AuthResponse)
	in := &api.RegisterRequest{Email: email, Password: password, Name: name}
	if err := c.invoke(ctx, api.AuthService_Register_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	out := new(api.AuthResponse)
	in := &api.LoginRequest{Email: email, Password: password}
	if err := c.invoke(ctx, api.AuthService_Login_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SignInAnonymously creates a guest account, the returned token is the only way back into it.
func (c *Client) SignInAnonymously(ctx context.Context) (*api.AuthResponse, error) {
	out := new(api.AuthResponse)
	if err := c.invoke(ctx, api.AuthService_SignInAnonymously_FullMethodName, &api.SignInAnonymouslyRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (*api.UserProfile, error) {
	out := new(api.UserProfile)
	if err := c.invoke(ctx, api.AuthService_Me_FullMethodName, &api.MeRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateChat(ctx context.Context, name string, participantIDs []string) (string, error) {
	out := new(api.CreateChatResponse)
	in := &api.CreateChatRequest{Name: name, ParticipantIDs: participantIDs}
	if err := c.invoke(ctx, api.ChatService_CreateChat_FullMethodName, in, out); err != nil {
		return "", err
	}
	return out.ChatID, nil
}

func (c *Client) ListChats(ctx context.Context) ([]api.Chat, error) {
	out := new(api.ListChatsResponse)
	if err := c.invoke(ctx, api.ChatService_ListChats_FullMethodName, &api.ListChatsRequest{}, out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, content string) error {
	in := &api.SendMessageRequest{ChatID: chatID, Content: content}
	return c.invoke(ctx, api.ChatService_SendMessage_FullMethodName, in, new(api.SendMessageResponse))
}

// ListMessages returns the messages newest first.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]api.Message, error) {
	out := new(api.ListMessagesResponse)
	in := &api.ListMessagesRequest{ChatID: chatID}
	if err := c.invoke(ctx, api.ChatService_ListMessages_FullMethodName, in, out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SubscribeMessages receives the full message list of the chat on every change.
func (c *Client) SubscribeMessages(ctx context.Context, chatID string) (grpc.ServerStreamingClient[api.ListMessagesResponse], error) {
	return subscribe[api.SubscribeMessagesRequest, api.ListMessagesResponse](c, ctx, &subscribeMessagesDesc,
		api.ChatService_SubscribeMessages_FullMethodName, &api.SubscribeMessagesRequest{ChatID: chatID})
}

// SubscribeChats receives the caller's chat list on every change.
func (c *Client) SubscribeChats(ctx context.Context) (grpc.ServerStreamingClient[api.ListChatsResponse], error) {
	return subscribe[api.SubscribeChatsRequest, api.ListChatsResponse](c, ctx, &subscribeChatsDesc,
		api.ChatService_SubscribeChats_FullMethodName, &api.SubscribeChatsRequest{})
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(c.outgoing(ctx), method, in, out, grpc.CallContentSubtype(api.CodecName))
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func subscribe[Req any, Res any](c *Client, ctx context.Context, desc *grpc.StreamDesc, method string, in *Req) (grpc.ServerStreamingClient[Res], error) {
	stream, err := c.conn.NewStream(c.outgoing(ctx), desc, method, grpc.CallContentSubtype(api.CodecName))
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Res]{ClientStream: stream}
	// io.EOF means the server already ended the call, Recv reports its status
	if err := x.ClientStream.SendMsg(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
