//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"groupchat/domain"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix = "msg:"
	// Badger sequence key feeding the tie-break of message keys
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 100
)

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

// NewMessageRepository leases a block of the message sequence.
// Close returns the unused part of the lease.
func NewMessageRepository(db *badger.DB, log *slog.Logger) (MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return MessageRepository{}, fmt.Errorf("unable to lease message sequence: %w", err)
	}
	return MessageRepository{db: db, log: log, seq: seq}, nil
}

func (m MessageRepository) Close() error {
	return m.seq.Release()
}

func messageKeyPrefix(chatID domain.ChatID) string {
	return fmt.Sprintf("%s%s:", messagePrefix, chatID)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{chat_id}:{timestamp_padded}:{sequence_padded}":
//  1. The 19-digit zero padded timestamp sorts lexicographically in time order.
//  2. The 20-digit sequence number is monotonic across the process, so messages
//     sharing a timestamp keep their insertion order and never overwrite each other.
func (m MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	n, err := m.seq.Next()
	if err != nil {
		return fmt.Errorf("unable to number message: %w", err)
	}
	key := fmt.Sprintf("%s%019d:%020d",
		messageKeyPrefix(message.ChatID),
		message.CreatedAt.UnixNano(),
		n,
	)
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeMessage(message))
	})
}

// GetMessages retrieves every message of a chat using a reverse prefix scan.
// Thanks to the padded timestamp in the key, messages come back newest first.
func (m MessageRepository) GetMessages(_ context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messageKeyPrefix(chatID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xFF sorts after every digit, so the reverse seek lands on the newest key
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := decodeMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("Messages loaded", "chat_id", chatID, "count", len(messages))
	return messages, nil
}
