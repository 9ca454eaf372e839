package e2e

import (
	"context"
	"fmt"
	"groupchat/client"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type testGroupChatSuite struct {
	BaseGrpcSuite
}

func TestGroupChatSuite(t *testing.T) {
	suite.Run(t, &testGroupChatSuite{})
}

func (s *testGroupChatSuite) register(ctx context.Context, c *client.Client, name string) (*client.Client, string) {
	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8])
	res, err := c.Register(ctx, email, "ComplexPass123!", name)
	s.Require().NoError(err)
	return c.WithToken(res.Token), res.UserID
}

func (s *testGroupChatSuite) TestTeamConversation() {
	s.WithClient("Team conversation between two members and an outsider", func(ctx context.Context, anonymous *client.Client) {
		alice, _ := s.register(ctx, anonymous, "Alice")
		bob, bobID := s.register(ctx, anonymous, "Bob")
		carol, _ := s.register(ctx, anonymous, "Carol")

		var chatID string
		s.Run("Step 1: Alice creates the chat with Bob", func() {
			var err error
			chatID, err = alice.CreateChat(ctx, "Team", []string{bobID})
			s.Require().NoError(err)

			chats, err := bob.ListChats(ctx)
			s.Require().NoError(err)
			s.Require().Len(chats, 1)
			s.Equal("Team", chats[0].Name)
		})

		s.Run("Step 2: members exchange messages, newest first", func() {
			s.Require().NoError(alice.SendMessage(ctx, chatID, "hello"))
			s.Require().NoError(bob.SendMessage(ctx, chatID, "hi Alice"))

			messages, err := alice.ListMessages(ctx, chatID)
			s.Require().NoError(err)
			s.Require().Len(messages, 2)
			s.Equal("hi Alice", messages[0].Content)
			s.Equal("Bob", messages[0].SenderName)
		})

		s.Run("Step 3: the outsider is kept out", func() {
			err := carol.SendMessage(ctx, chatID, "let me in")
			s.Equal(codes.PermissionDenied, status.Code(err))

			_, err = carol.ListMessages(ctx, chatID)
			s.Equal(codes.PermissionDenied, status.Code(err))

			chats, err := carol.ListChats(ctx)
			s.Require().NoError(err)
			s.Empty(chats)
		})

		s.Run("Step 4: anonymous and unknown chat calls are rejected", func() {
			_, err := anonymous.ListChats(ctx)
			s.Equal(codes.Unauthenticated, status.Code(err))

			_, err = alice.ListMessages(ctx, uuid.NewString())
			s.Equal(codes.NotFound, status.Code(err))
		})
	})
}

func (s *testGroupChatSuite) TestGuestJoinsAChat() {
	s.WithClient("A guest signs in anonymously and is invited to a chat", func(ctx context.Context, anonymous *client.Client) {
		alice, _ := s.register(ctx, anonymous, "Alice")

		res, err := anonymous.SignInAnonymously(ctx)
		s.Require().NoError(err)
		guest := anonymous.WithToken(res.Token)

		profile, err := guest.Me(ctx)
		s.Require().NoError(err)
		s.True(profile.Anonymous)
		s.Equal("Unknown", profile.Name)

		chatID, err := alice.CreateChat(ctx, "Welcome", []string{res.UserID})
		s.Require().NoError(err)
		s.Require().NoError(guest.SendMessage(ctx, chatID, "hello"))

		messages, err := alice.ListMessages(ctx, chatID)
		s.Require().NoError(err)
		s.Require().Len(messages, 1)
		s.Equal("Unknown", messages[0].SenderName)
	})
}
