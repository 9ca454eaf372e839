package postgres

import (
	"context"
	goerrors "errors"
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"sort"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return ChatRepository{db: db}
}

func (r ChatRepository) CreateChat(ctx context.Context, chat domain.Chat) error {
	record := chatRecord{
		ID:        chat.ID.String(),
		Name:      chat.Name,
		CreatedAt: chat.CreatedAt,
		Participants: lo.Map(chat.Participants, func(userID string, i int) participantRecord {
			return participantRecord{ChatID: chat.ID.String(), UserID: userID, Position: i}
		}),
	}
	// Create with associations runs inside a single transaction
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r ChatRepository) GetChat(ctx context.Context, id domain.ChatID) (domain.Chat, error) {
	var record chatRecord
	err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&record, "id = ?", id.String()).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Chat{}, fmt.Errorf("%w: %s", errors.ErrChatNotFound, id)
	}
	if err != nil {
		return domain.Chat{}, err
	}
	return toChat(record), nil
}

// ListChatsByParticipant joins through chat_participants, oldest chat first.
func (r ChatRepository) ListChatsByParticipant(ctx context.Context, userID string) ([]domain.Chat, error) {
	var records []chatRecord
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", userID).
		Order("chats.created_at ASC, chats.id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return lo.Map(records, func(record chatRecord, _ int) domain.Chat {
		return toChat(record)
	}), nil
}

func toChat(record chatRecord) domain.Chat {
	participants := record.Participants
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Position < participants[j].Position
	})
	return domain.Chat{
		ID:   domain.ChatID(record.ID),
		Name: record.Name,
		Participants: lo.Map(participants, func(p participantRecord, _ int) string {
			return p.UserID
		}),
		CreatedAt: record.CreatedAt.UTC(),
	}
}
