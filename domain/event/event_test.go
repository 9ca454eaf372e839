package event

import (
	"groupchat/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatCreated_Notifies_Every_Participant(t *testing.T) {
	req := require.New(t)
	chat := domain.NewChat("Team", []string{"bob"}, "alice", time.Now())

	topics := ChatCreated{Chat: chat}.Topics()

	req.ElementsMatch([]Topic{"participant:bob", "participant:alice"}, topics)
}

func TestMessageSent_Notifies_Its_Chat(t *testing.T) {
	req := require.New(t)
	message := domain.NewMessage("chat-1", "alice", "hello", time.Now())

	req.Equal([]Topic{ChatTopic("chat-1")}, MessageSent{Message: message}.Topics())
}
