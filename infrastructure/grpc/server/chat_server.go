package server

import (
	"context"
	"groupchat/api"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/sink"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ ChatServiceServer = (*ChatServer)(nil)

type ChatServer struct {
	chatService          contract.IChatService
	connectionBufferSize int
	log                  *slog.Logger
	done                 chan struct{}
	closeOnce            sync.Once
}

func NewChatServer(log *slog.Logger, chatService contract.IChatService, connectionBufferSize int) *ChatServer {
	return &ChatServer{
		chatService:          chatService,
		connectionBufferSize: connectionBufferSize,
		log:                  log,
		done:                 make(chan struct{}),
	}
}

// Close ends every open subscription with codes.Unavailable.
// It must run before grpc.Server.GracefulStop, which waits for streaming handlers to return.
func (s *ChatServer) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *ChatServer) CreateChat(ctx context.Context, req *api.CreateChatRequest) (*api.CreateChatResponse, error) {
	chatID, err := s.chatService.CreateChat(ctx, domain.CreateChatCommand{
		Name:           req.Name,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.CreateChatResponse{ChatID: chatID.String()}, nil
}

func (s *ChatServer) ListChats(ctx context.Context, _ *api.ListChatsRequest) (*api.ListChatsResponse, error) {
	chats, err := s.chatService.ListChats(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ListChatsResponse{Chats: api.FromChatViews(chats)}, nil
}

func (s *ChatServer) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*api.SendMessageResponse, error) {
	err := s.chatService.SendMessage(ctx, domain.SendMessageCommand{
		ChatID:  domain.ChatID(req.ChatID),
		Content: req.Content,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.SendMessageResponse{}, nil
}

func (s *ChatServer) ListMessages(ctx context.Context, req *api.ListMessagesRequest) (*api.ListMessagesResponse, error) {
	messages, err := s.chatService.ListMessages(ctx, domain.ChatID(req.ChatID))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ListMessagesResponse{Messages: api.FromMessageViews(messages)}, nil
}

// SubscribeMessages streams the full message list of a chat, first immediately
// then again after every message sent to it.
// This method blocks until the client disconnects or a network error occurs.
func (s *ChatServer) SubscribeMessages(req *api.SubscribeMessagesRequest, stream grpc.ServerStreamingServer[api.ListMessagesResponse]) error {
	ctx := stream.Context()
	chatID := domain.ChatID(req.ChatID)
	streamSink := sink.NewStreamSink(s.connectionBufferSize)

	// Subscribed before the first snapshot so no message falls in between
	unsubscribe, err := s.chatService.SubscribeMessages(ctx, chatID, streamSink)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	defer unsubscribe()

	return s.watch(ctx, streamSink, func() error {
		messages, err := s.chatService.ListMessages(ctx, chatID)
		if err != nil {
			return errors.MapToGRPCError(err)
		}
		return stream.Send(&api.ListMessagesResponse{Messages: api.FromMessageViews(messages)})
	})
}

// SubscribeChats streams the caller's chat list, then again whenever a chat including them is created.
func (s *ChatServer) SubscribeChats(_ *api.SubscribeChatsRequest, stream grpc.ServerStreamingServer[api.ListChatsResponse]) error {
	ctx := stream.Context()
	streamSink := sink.NewStreamSink(s.connectionBufferSize)

	unsubscribe, err := s.chatService.SubscribeChats(ctx, streamSink)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	defer unsubscribe()

	return s.watch(ctx, streamSink, func() error {
		chats, err := s.chatService.ListChats(ctx)
		if err != nil {
			return errors.MapToGRPCError(err)
		}
		return stream.Send(&api.ListChatsResponse{Chats: api.FromChatViews(chats)})
	})
}

func (s *ChatServer) watch(ctx context.Context, streamSink *sink.StreamSink, push func() error) error {
	if err := push(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Subscriber disconnected", "error", ctx.Err())
			return nil
		case <-s.done:
			s.log.Debug("Closing subscription, server shutting down")
			return status.Error(codes.Unavailable, "server shutting down")
		case <-streamSink.Events():
			if err := push(); err != nil {
				s.log.Error("Failed to push snapshot to stream", "error", err)
				return err
			}
		}
	}
}
