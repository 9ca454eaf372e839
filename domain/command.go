package domain

// CreateChatCommand is issued by the caller resolved from the request context.
type CreateChatCommand struct {
	Name           string
	ParticipantIDs []string
}

type SendMessageCommand struct {
	ChatID  ChatID
	Content string
}
