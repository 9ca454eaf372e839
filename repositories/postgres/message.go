package postgres

import (
	"context"
	"groupchat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return MessageRepository{db: db}
}

func (m MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	return m.db.WithContext(ctx).Create(&messageRecord{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}).Error
}

// GetMessages returns every message of the chat, newest first.
// Messages sharing a timestamp come back in reverse insertion order.
func (m MessageRepository) GetMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	var records []messageRecord
	err := m.db.WithContext(ctx).
		Where("chat_id = ?", chatID.String()).
		Order("created_at DESC, seq DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(records))
	for _, record := range records {
		id, err := uuid.Parse(record.ID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, domain.Message{
			ID:        id,
			ChatID:    domain.ChatID(record.ChatID),
			SenderID:  record.SenderID,
			Content:   record.Content,
			CreatedAt: record.CreatedAt.UTC(),
		})
	}
	return messages, nil
}
