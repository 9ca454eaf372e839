package event

import (
	"groupchat/domain"
)

// Topic identifies a subscription key. Subscribers registered on a topic are
// notified whenever the result of the query behind it may have changed.
type Topic string

func ChatTopic(chatID domain.ChatID) Topic {
	return Topic("chat:" + chatID.String())
}

func ParticipantTopic(userID string) Topic {
	return Topic("participant:" + userID)
}

type DomainEvent interface {
	Topics() []Topic
}

// ChatCreated is published once a chat is durably stored.
// Every participant's chat list changes.
type ChatCreated struct {
	Chat domain.Chat
}

func (c ChatCreated) Topics() []Topic {
	topics := make([]Topic, 0, len(c.Chat.Participants))
	for _, participant := range c.Chat.Participants {
		topics = append(topics, ParticipantTopic(participant))
	}
	return topics
}

// MessageSent is published once a message is durably stored.
type MessageSent struct {
	Message domain.Message
}

func (m MessageSent) Topics() []Topic {
	return []Topic{ChatTopic(m.Message.ChatID)}
}
