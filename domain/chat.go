// Package domain contains core concepts of the chat system.
// This file defines Chat entities and the participant membership rule.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ChatID string

func (id ChatID) String() string { return string(id) }

// Chat is a named set of participants. It never changes after creation.
type Chat struct {
	ID           ChatID
	Name         string
	Participants []string
	CreatedAt    time.Time
}

// NewChat builds a chat whose participants are the supplied ids plus the creator.
// Duplicates and empty ids are dropped, the supplied order is kept and the
// creator is appended when it was not already part of the list.
func NewChat(name string, participantIDs []string, creatorID string, at time.Time) Chat {
	participants := lo.Uniq(lo.Compact(append(lo.Compact(participantIDs), creatorID)))
	return Chat{
		ID:           ChatID(uuid.NewString()),
		Name:         name,
		Participants: participants,
		CreatedAt:    at,
	}
}

// IsParticipant reports whether userID belongs to the chat.
func (c Chat) IsParticipant(userID string) bool {
	return userID != "" && lo.Contains(c.Participants, userID)
}

type ParticipantView struct {
	ID   string
	Name string
}

// ChatView is a Chat whose participant ids have been resolved to display names.
type ChatView struct {
	ID           ChatID
	Name         string
	Participants []ParticipantView
	CreatedAt    time.Time
}

func NewChatView(chat Chat, names map[string]string) ChatView {
	return ChatView{
		ID:   chat.ID,
		Name: chat.Name,
		Participants: lo.Map(chat.Participants, func(id string, _ int) ParticipantView {
			return ParticipantView{ID: id, Name: nameOrUnknown(names, id)}
		}),
		CreatedAt: chat.CreatedAt,
	}
}
