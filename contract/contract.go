//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"groupchat/domain"
	"groupchat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForTopics(topics ...event.Topic) []EventSink
	Subscribe(subscriberID string, topic event.Topic, sink EventSink)
	Unsubscribe(subscriberID string, topic event.Topic)
}

// IEventBus publishes domain events and manages live subscriptions.
type IEventBus interface {
	Publish(e event.DomainEvent)
	Subscribe(subscriberID string, topic event.Topic, sink EventSink)
	Unsubscribe(subscriberID string, topic event.Topic)
}

// IIdentityResolver maps a request to its user and user ids to display names.
type IIdentityResolver interface {
	CurrentUser(ctx context.Context) (string, error)
	DisplayNames(ctx context.Context, userIDs []string) map[string]string
}

type IChatService interface {
	CreateChat(ctx context.Context, cmd domain.CreateChatCommand) (domain.ChatID, error)
	ListChats(ctx context.Context) ([]domain.ChatView, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error
	ListMessages(ctx context.Context, chatID domain.ChatID) ([]domain.MessageView, error)
	SubscribeMessages(ctx context.Context, chatID domain.ChatID, sink EventSink) (func(), error)
	SubscribeChats(ctx context.Context, sink EventSink) (func(), error)
}

type AuthResult struct {
	Token  string
	UserID string
}

// UserProfile is what a signed in user sees of their own account.
// Name is the display name, Email is empty for anonymous accounts.
type UserProfile struct {
	ID        string
	Name      string
	Email     string
	Anonymous bool
}

type IAuthService interface {
	Register(ctx context.Context, email, password, name string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	// SignInAnonymously creates a guest account with neither email nor name.
	SignInAnonymously(ctx context.Context) (AuthResult, error)
	// Me returns the profile of the caller carried by the context.
	Me(ctx context.Context) (UserProfile, error)
}
