package api

import (
	"groupchat/contract"
	"groupchat/domain"

	"github.com/samber/lo"
)

func FromChatViews(chats []domain.ChatView) []Chat {
	return lo.Map(chats, func(item domain.ChatView, _ int) Chat {
		return Chat{
			ID:   item.ID.String(),
			Name: item.Name,
			Participants: lo.Map(item.Participants, func(p domain.ParticipantView, _ int) Participant {
				return Participant{ID: p.ID, Name: p.Name}
			}),
			CreatedAt: item.CreatedAt,
		}
	})
}

func FromMessageViews(messages []domain.MessageView) []Message {
	return lo.Map(messages, func(item domain.MessageView, _ int) Message {
		return Message{
			ID:         item.ID.String(),
			Content:    item.Content,
			SenderID:   item.SenderID,
			SenderName: item.SenderName,
			ChatID:     item.ChatID.String(),
			CreatedAt:  item.CreatedAt,
		}
	})
}

func FromUserProfile(profile contract.UserProfile) UserProfile {
	return UserProfile{ID: profile.ID, Name: profile.Name, Email: profile.Email, Anonymous: profile.Anonymous}
}
