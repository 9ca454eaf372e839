package sink

import (
	"bytes"
	"context"
	"groupchat/domain"
	"groupchat/domain/event"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreamSink_DropsWhenFull(t *testing.T) {
	req := require.New(t)
	s := NewStreamSink(1)
	first := event.MessageSent{Message: domain.NewMessage("chat-1", "alice", "one", time.Now().UTC())}
	second := event.MessageSent{Message: domain.NewMessage("chat-1", "alice", "two", time.Now().UTC())}

	req.NoError(s.Consume(context.Background(), first))
	// Buffer full, the second event is dropped without blocking
	req.NoError(s.Consume(context.Background(), second))

	req.Equal(first, <-s.Events())
	select {
	case e := <-s.Events():
		req.Failf("unexpected event", "%v", e)
	default:
	}
}

func TestStreamSink_MinimumBuffer(t *testing.T) {
	req := require.New(t)
	s := NewStreamSink(0)
	evt := event.ChatCreated{Chat: domain.NewChat("Team", nil, "alice", time.Now().UTC())}

	req.NoError(s.Consume(context.Background(), evt))
	req.Equal(evt, <-s.Events())
}

func TestLogSink_Consume(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	chat := domain.NewChat("Team", nil, "alice", time.Now().UTC())

	req.NoError(NewLogSink(log).Consume(context.Background(), event.ChatCreated{Chat: chat}))

	req.Contains(buf.String(), "Chat created")
	req.Contains(buf.String(), string(chat.ID))
}
