package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"groupchat/auth"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/repositories"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.IChatService = (*ChatService)(nil)

type ChatService struct {
	log       *slog.Logger
	identity  contract.IIdentityResolver
	chats     repositories.IChatRepository
	messages  repositories.IMessageRepository
	bus       contract.IEventBus
	validator *auth.Validator
}

func NewChatService(
	log *slog.Logger,
	identity contract.IIdentityResolver,
	chats repositories.IChatRepository,
	messages repositories.IMessageRepository,
	bus contract.IEventBus,
	validator *auth.Validator,
) *ChatService {
	return &ChatService{
		log:       log,
		identity:  identity,
		chats:     chats,
		messages:  messages,
		bus:       bus,
		validator: validator,
	}
}

// CreateChat stores a chat owned by the caller and notifies every participant.
func (s *ChatService) CreateChat(ctx context.Context, cmd domain.CreateChatCommand) (domain.ChatID, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(cmd.Name)
	if err := s.validator.ValidateChatName(name); err != nil {
		return "", err
	}

	chat := domain.NewChat(name, cmd.ParticipantIDs, userID, time.Now().UTC())
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return "", fmt.Errorf("unable to create chat: %w", err)
	}
	s.log.Info("Chat created", "chat_id", chat.ID, "creator", userID, "participants", len(chat.Participants))

	s.bus.Publish(event.ChatCreated{Chat: chat})
	return chat.ID, nil
}

// ListChats returns the chats the caller participates in, participants resolved to names.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.ChatView, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	chats, err := s.chats.ListChatsByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to list chats: %w", err)
	}

	ids := lo.FlatMap(chats, func(chat domain.Chat, _ int) []string { return chat.Participants })
	names := s.identity.DisplayNames(ctx, ids)

	return lo.Map(chats, func(chat domain.Chat, _ int) domain.ChatView {
		return domain.NewChatView(chat, names)
	}), nil
}

// SendMessage appends exactly one message from the caller. Nothing is written when a check fails.
func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.requireParticipant(ctx, cmd.ChatID, userID); err != nil {
		return err
	}

	message := domain.NewMessage(cmd.ChatID, userID, cmd.Content, time.Now().UTC())
	if err := s.messages.StoreMessage(ctx, message); err != nil {
		return fmt.Errorf("unable to store message: %w", err)
	}
	s.log.Debug("Message stored", "chat_id", cmd.ChatID, "message_id", message.ID)

	s.bus.Publish(event.MessageSent{Message: message})
	return nil
}

// ListMessages returns every message of the chat, newest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.MessageView, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messages.GetMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := lo.Map(messages, func(m domain.Message, _ int) string { return m.SenderID })
	names := s.identity.DisplayNames(ctx, ids)

	return lo.Map(messages, func(m domain.Message, _ int) domain.MessageView {
		return domain.NewMessageView(m, names)
	}), nil
}

// SubscribeMessages notifies sink whenever a message is sent to the chat.
func (s *ChatService) SubscribeMessages(ctx context.Context, chatID domain.ChatID, sink contract.EventSink) (func(), error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.subscribe(event.ChatTopic(chatID), userID, sink), nil
}

// SubscribeChats notifies sink whenever a chat including the caller is created.
func (s *ChatService) SubscribeChats(ctx context.Context, sink contract.EventSink) (func(), error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.subscribe(event.ParticipantTopic(userID), userID, sink), nil
}

func (s *ChatService) subscribe(topic event.Topic, userID string, sink contract.EventSink) func() {
	subscriberID := uuid.NewString()
	s.bus.Subscribe(subscriberID, topic, sink)
	s.log.Debug("Subscribed", "topic", topic, "user_id", userID, "subscriber_id", subscriberID)
	return func() {
		s.bus.Unsubscribe(subscriberID, topic)
		s.log.Debug("Unsubscribed", "topic", topic, "subscriber_id", subscriberID)
	}
}

// requireParticipant reports ErrChatNotFound before ErrNotParticipant.
func (s *ChatService) requireParticipant(ctx context.Context, chatID domain.ChatID, userID string) (domain.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		if goerrors.Is(err, errors.ErrChatNotFound) {
			return domain.Chat{}, err
		}
		return domain.Chat{}, fmt.Errorf("unable to load chat %s: %w", chatID, err)
	}
	if !chat.IsParticipant(userID) {
		return domain.Chat{}, fmt.Errorf("%w: user %s in chat %s", errors.ErrNotParticipant, userID, chatID)
	}
	return chat, nil
}
