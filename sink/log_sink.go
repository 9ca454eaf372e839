package sink

import (
	"context"
	"fmt"
	"groupchat/domain/event"
	"log/slog"
)

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatCreated:
		l.log.DebugContext(ctx, "Chat created",
			"chat_id", evt.Chat.ID, "participants", len(evt.Chat.Participants))
	case event.MessageSent:
		l.log.DebugContext(ctx, "Message sent",
			"chat_id", evt.Message.ChatID, "message_id", evt.Message.ID, "sender", evt.Message.SenderID)
	default:
		l.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
	}
	return nil
}
