package postgres

import (
	"context"
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB needs a disposable database, e.g.
// POSTGRES_TEST_DSN="host=localhost user=postgres password=postgres dbname=groupchat_test sslmode=disable"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestPostgres_Chat_Membership(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openTestDB(t))
	alice, bob, clara := uuid.NewString(), uuid.NewString(), uuid.NewString()
	at := time.Now().UTC().Truncate(time.Microsecond)

	team := domain.NewChat("Team", []string{bob}, alice, at)
	other := domain.NewChat("Other", []string{clara}, bob, at.Add(time.Second))
	req.NoError(repository.CreateChat(ctx, team))
	req.NoError(repository.CreateChat(ctx, other))

	fetched, err := repository.GetChat(ctx, team.ID)
	req.NoError(err)
	req.Equal(team.Participants, fetched.Participants)
	req.True(team.CreatedAt.Equal(fetched.CreatedAt))

	chats, err := repository.ListChatsByParticipant(ctx, bob)
	req.NoError(err)
	req.Len(chats, 2)
	req.Equal(team.ID, chats[0].ID)
	req.Equal(other.ID, chats[1].ID)

	chats, err = repository.ListChatsByParticipant(ctx, alice)
	req.NoError(err)
	req.Len(chats, 1)

	_, err = repository.GetChat(ctx, domain.ChatID(uuid.NewString()))
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func TestPostgres_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openTestDB(t))
	chatID := domain.ChatID(uuid.NewString())
	at := time.Now().UTC().Truncate(time.Microsecond)

	first := domain.NewMessage(chatID, "alice", "first", at)
	second := domain.NewMessage(chatID, "bob", "second", at.Add(time.Minute))
	req.NoError(repository.StoreMessage(ctx, first))
	req.NoError(repository.StoreMessage(ctx, second))

	messages, err := repository.GetMessages(ctx, chatID)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(second.ID, messages[0].ID)
	req.Equal(first.ID, messages[1].ID)
}

func TestPostgres_Users(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(openTestDB(t))
	email := uuid.NewString() + "@example.com"

	id, err := repository.CreateUser(ctx, email, "Alice", "hash")
	req.NoError(err)

	_, err = repository.CreateUser(ctx, email, "Alice again", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	user, err := repository.GetUserByID(ctx, id)
	req.NoError(err)
	req.Equal("Alice", user.Name)

	_, err = repository.GetUserByEmail(ctx, "ghost-"+email)
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestPostgres_Anonymous_Users(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewUserRepository(openTestDB(t))

	// Several NULL emails do not collide on the unique index
	first, err := repository.CreateAnonymousUser(ctx)
	req.NoError(err)
	_, err = repository.CreateAnonymousUser(ctx)
	req.NoError(err)

	user, err := repository.GetUserByID(ctx, first)
	req.NoError(err)
	req.True(user.IsAnonymous())
	req.Equal([]string{"anonymous"}, user.Roles)
}

func TestPostgres_Messages_Same_Timestamp_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openTestDB(t))
	chatID := domain.ChatID(uuid.NewString())
	// Nanoseconds are dropped by Postgres, every message lands on the same microsecond
	at := time.Now().UTC().Truncate(time.Microsecond)

	var stored []domain.Message
	for i := 0; i < 10; i++ {
		message := domain.NewMessage(chatID, "alice", fmt.Sprintf("same time %d", i), at.Add(time.Duration(i)))
		req.NoError(repository.StoreMessage(ctx, message))
		stored = append(stored, message)
	}

	messages, err := repository.GetMessages(ctx, chatID)
	req.NoError(err)
	req.Len(messages, 10)
	for i, message := range messages {
		req.Equal(stored[len(stored)-1-i].ID, message.ID)
	}
}
