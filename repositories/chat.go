//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/hex"
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	chatPrefix   = "chat:"
	memberPrefix = "member:"
)

type IChatRepository interface {
	CreateChat(ctx context.Context, chat domain.Chat) error
	GetChat(ctx context.Context, id domain.ChatID) (domain.Chat, error)
	ListChatsByParticipant(ctx context.Context, userID string) ([]domain.Chat, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) ChatRepository {
	return ChatRepository{db: db, log: log}
}

func chatKey(id domain.ChatID) []byte {
	return []byte(chatPrefix + id.String())
}

// memberKeyPrefix scopes the membership index to one user. The user id is hex
// encoded so that an id containing ':' can never match another user's prefix.
func memberKeyPrefix(userID string) string {
	return memberPrefix + hex.EncodeToString([]byte(userID)) + ":"
}

// memberKey is "member:{hex(user)}:{created_at_padded}:{chat_id}".
// The padded timestamp keeps a user's chats sorted by creation time.
func memberKey(userID string, chat domain.Chat) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s",
		memberKeyPrefix(userID),
		chat.CreatedAt.UnixNano(),
		chat.ID,
	))
}

// CreateChat stores the chat and one membership row per participant
// in a single transaction.
func (r ChatRepository) CreateChat(_ context.Context, chat domain.Chat) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chatKey(chat.ID), encodeChat(chat)); err != nil {
			return err
		}
		for _, participant := range chat.Participants {
			if err := txn.Set(memberKey(participant, chat), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r ChatRepository) GetChat(_ context.Context, id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = getChat(txn, id)
		return err
	})
	return chat, err
}

func getChat(txn *badger.Txn, id domain.ChatID) (domain.Chat, error) {
	item, err := txn.Get(chatKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Chat{}, fmt.Errorf("%w: %s", errors.ErrChatNotFound, id)
	}
	if err != nil {
		return domain.Chat{}, err
	}
	var chat domain.Chat
	err = item.Value(func(value []byte) error {
		chat, err = decodeChat(value)
		return err
	})
	return chat, err
}

// ListChatsByParticipant scans the membership index of userID.
// Chats come back oldest first.
func (r ChatRepository) ListChatsByParticipant(_ context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(memberKeyPrefix(userID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			chatID := domain.ChatID(key[strings.LastIndexByte(key, ':')+1:])
			chat, err := getChat(txn, chatID)
			if err != nil {
				return err
			}
			if !chat.IsParticipant(userID) {
				r.log.Warn("Membership index out of sync", "chat_id", chatID, "user_id", userID)
				continue
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}
