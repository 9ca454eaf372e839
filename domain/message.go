// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once stored.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	ChatID    ChatID
	SenderID  string
	Content   string
	CreatedAt time.Time
}

func NewMessage(chatID ChatID, senderID, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: at,
	}
}

// MessageView is a Message enriched with its sender display name.
type MessageView struct {
	ID         uuid.UUID
	ChatID     ChatID
	SenderID   string
	SenderName string
	Content    string
	CreatedAt  time.Time
}

func NewMessageView(message Message, names map[string]string) MessageView {
	return MessageView{
		ID:         message.ID,
		ChatID:     message.ChatID,
		SenderID:   message.SenderID,
		SenderName: nameOrUnknown(names, message.SenderID),
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
	}
}
