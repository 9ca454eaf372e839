package repositories

import (
	"context"
	"fmt"
	"groupchat/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newMessageRepository(t *testing.T, db *badger.DB) MessageRepository {
	t.Helper()
	repository, err := NewMessageRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Record_And_Get_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openTestDB(t))
	chatID := domain.ChatID(uuid.NewString())
	content := "this message will self destruct in 5 seconds"
	at := time.Now().UTC()
	messages := []domain.Message{
		{ID: uuid.New(), ChatID: chatID, SenderID: "Alice", Content: content, CreatedAt: at},
		{ID: uuid.New(), ChatID: chatID, SenderID: "Bob", Content: content, CreatedAt: at.Add(1 * time.Minute)},
		{ID: uuid.New(), ChatID: chatID, SenderID: "Clara", Content: content, CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, message := range messages {
		req.NoError(repository.StoreMessage(ctx, message))
	}

	// When fetching messages
	fetched, err := repository.GetMessages(ctx, chatID)
	req.NoError(err)

	// Then the messages are sorted by creation time descending
	req.Equal([]domain.Message{messages[2], messages[1], messages[0]}, fetched)
}

func Test_Messages_Are_Scoped_To_Their_Chat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openTestDB(t))
	now := time.Now().UTC()

	for i := 1; i <= 10; i++ {
		chatID := domain.ChatID(fmt.Sprintf("chat-%d", i%2))
		req.NoError(repository.StoreMessage(ctx, domain.Message{
			ID:        uuid.New(),
			ChatID:    chatID,
			SenderID:  fmt.Sprintf("user_%d", i),
			Content:   fmt.Sprintf("Message %d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	even, err := repository.GetMessages(ctx, "chat-0")
	req.NoError(err)
	req.Len(even, 5)
	req.Equal("user_10", even[0].SenderID) // newest
	req.Equal("user_2", even[4].SenderID)

	odd, err := repository.GetMessages(ctx, "chat-1")
	req.NoError(err)
	req.Len(odd, 5)
	req.Equal("user_9", odd[0].SenderID)
	req.Equal("user_1", odd[4].SenderID)
}

func Test_Same_Nanosecond_Messages_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newMessageRepository(t, openTestDB(t))
	at := time.Now().UTC()

	// Random IDs would sort these arbitrarily, the sequence must not
	var stored []domain.Message
	for i := 0; i < 20; i++ {
		message := domain.NewMessage("chat-1", "alice", fmt.Sprintf("same time %d", i), at)
		req.NoError(repository.StoreMessage(ctx, message))
		stored = append(stored, message)
	}

	fetched, err := repository.GetMessages(ctx, "chat-1")
	req.NoError(err)
	req.Len(fetched, 20)
	for i, message := range fetched {
		req.Equal(stored[len(stored)-1-i].Content, message.Content)
	}
}

func Test_Message_Order_Survives_A_Restart(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	at := time.Now().UTC()

	first, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	req.NoError(first.StoreMessage(ctx, domain.NewMessage("chat-1", "alice", "before", at)))
	req.NoError(first.Close())

	// A new lease starts after the released one
	second := newMessageRepository(t, db)
	req.NoError(second.StoreMessage(ctx, domain.NewMessage("chat-1", "alice", "after", at)))

	fetched, err := second.GetMessages(ctx, "chat-1")
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal("after", fetched[0].Content)
	req.Equal("before", fetched[1].Content)
}

func Test_Unknown_Chat_Has_No_Messages(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, openTestDB(t))

	fetched, err := repository.GetMessages(context.Background(), "nope")
	req.NoError(err)
	req.Empty(fetched)
}
