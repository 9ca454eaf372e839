package test

import (
	"context"
	"groupchat/api"
	"groupchat/auth"
	"groupchat/client"
	"groupchat/identity"
	"groupchat/infrastructure/grpc/server"
	"groupchat/repositories"
	"groupchat/runtime"
	"groupchat/runtime/workers"
	"groupchat/services"
	"groupchat/sink"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const password = "ComplexPass123!"

type stack struct {
	client     *client.Client
	grpcServer *grpc.Server
	chatServer *server.ChatServer
}

// startStack runs the whole server on a temporary badger store, its client carries no token.
func startStack(t *testing.T) stack {
	t.Helper()
	req := require.New(t)

	// Reduced to 16 Mo for testing
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	ctx, cancel := context.WithCancel(context.Background())

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRegistry(), 4, 100, time.Second).WithPublishTimeout(time.Second)
	orchestrator.Add(sink.NewLogSink(log))
	go orchestrator.Start(ctx)

	users := repositories.NewUserRepository(db)
	messages, err := repositories.NewMessageRepository(db, log)
	req.NoError(err)
	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	validator := auth.NewValidator(12)
	hasher := auth.NewPasswordHasher(auth.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	chatService := services.NewChatService(log, identity.NewResolver(log, users),
		repositories.NewChatRepository(db, log), messages, orchestrator, validator)
	authService := services.NewAuthService(log, users, tokens, hasher, validator)

	listener := bufconn.Listen(1024 * 1024)
	chatServer := server.NewChatServer(log, chatService, 8)
	s := server.NewGRPCServer(log, tokens, server.NewAuthServer(authService), chatServer)
	go func() { _ = s.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	req.NoError(err)

	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
		cancel()
		orchestrator.Stop()
		_ = messages.Close()
		_ = db.Close()
	})
	return stack{client: client.New(conn), grpcServer: s, chatServer: chatServer}
}

func register(t *testing.T, c *client.Client, email, name string) (*client.Client, string) {
	t.Helper()
	res, err := c.Register(context.Background(), email, password, name)
	require.NoError(t, err)
	return c.WithToken(res.Token), res.UserID
}

func Test_Scenario_team_chat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	anonymous := startStack(t).client

	alice, aliceID := register(t, anonymous, "alice@example.com", "Alice")
	bob, bobID := register(t, anonymous, "bob@example.com", "")

	// 1. A creates "Team" with only herself, B cannot see or write to it
	chatID, err := alice.CreateChat(ctx, "  Team  ", nil)
	req.NoError(err)

	chats, err := alice.ListChats(ctx)
	req.NoError(err)
	req.Len(chats, 1)
	req.Equal("Team", chats[0].Name)
	req.Equal([]api.Participant{{ID: aliceID, Name: "Alice"}}, chats[0].Participants)

	chats, err = bob.ListChats(ctx)
	req.NoError(err)
	req.Empty(chats)

	err = bob.SendMessage(ctx, chatID, "hello?")
	req.Equal(codes.PermissionDenied, status.Code(err))

	// 2. A's messages are listed newest first with her display name
	req.NoError(alice.SendMessage(ctx, chatID, "first"))
	req.NoError(alice.SendMessage(ctx, chatID, "second"))

	messages, err := alice.ListMessages(ctx, chatID)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("second", messages[0].Content)
	req.Equal("first", messages[1].Content)
	req.Equal("Alice", messages[0].SenderName)
	req.False(messages[0].CreatedAt.Before(messages[1].CreatedAt))

	// Queries do not change anything
	again, err := alice.ListMessages(ctx, chatID)
	req.NoError(err)
	req.Equal(messages, again)

	// 3. A second chat including B, who registered without a name
	otherID, err := alice.CreateChat(ctx, "Pair", []string{bobID, bobID})
	req.NoError(err)
	chats, err = bob.ListChats(ctx)
	req.NoError(err)
	req.Len(chats, 1)
	req.Equal(otherID, chats[0].ID)
	req.ElementsMatch([]api.Participant{{ID: aliceID, Name: "Alice"}, {ID: bobID, Name: "Unknown"}},
		chats[0].Participants)

	// 4. Unknown chats and anonymous callers
	_, err = alice.ListMessages(ctx, "does-not-exist")
	req.Equal(codes.NotFound, status.Code(err))

	_, err = anonymous.ListChats(ctx)
	req.Equal(codes.Unauthenticated, status.Code(err))

	_, err = alice.CreateChat(ctx, "   ", nil)
	req.Equal(codes.InvalidArgument, status.Code(err))
}

func Test_Scenario_message_subscription(t *testing.T) {
	req := require.New(t)
	anonymous := startStack(t).client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, _ := register(t, anonymous, "alice@example.com", "Alice")
	bob, bobID := register(t, anonymous, "bob@example.com", "Bob")
	carol, _ := register(t, anonymous, "carol@example.com", "Carol")

	chatID, err := alice.CreateChat(ctx, "Team", []string{bobID})
	req.NoError(err)

	stream, err := bob.SubscribeMessages(ctx, chatID)
	req.NoError(err)

	snapshot, err := stream.Recv()
	req.NoError(err)
	req.Empty(snapshot.Messages)

	req.NoError(alice.SendMessage(ctx, chatID, "ping"))

	snapshot, err = stream.Recv()
	req.NoError(err)
	req.Len(snapshot.Messages, 1)
	req.Equal("ping", snapshot.Messages[0].Content)
	req.Equal("Alice", snapshot.Messages[0].SenderName)

	// Non participants are refused before any snapshot
	outsider, err := carol.SubscribeMessages(ctx, chatID)
	req.NoError(err)
	_, err = outsider.Recv()
	req.Equal(codes.PermissionDenied, status.Code(err))
}

func Test_Scenario_chat_list_subscription(t *testing.T) {
	req := require.New(t)
	anonymous := startStack(t).client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, _ := register(t, anonymous, "alice@example.com", "Alice")
	bob, bobID := register(t, anonymous, "bob@example.com", "Bob")

	stream, err := bob.SubscribeChats(ctx)
	req.NoError(err)
	snapshot, err := stream.Recv()
	req.NoError(err)
	req.Empty(snapshot.Chats)

	_, err = alice.CreateChat(ctx, "Team", []string{bobID})
	req.NoError(err)

	snapshot, err = stream.Recv()
	req.NoError(err)
	req.Len(snapshot.Chats, 1)
	req.Equal("Team", snapshot.Chats[0].Name)
}

func Test_Scenario_queries_are_idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	anonymous := startStack(t).client

	alice, _ := register(t, anonymous, "alice@example.com", "Alice")
	_, bobID := register(t, anonymous, "bob@example.com", "")
	chatID, err := alice.CreateChat(ctx, "Team", []string{bobID})
	req.NoError(err)
	_, err = alice.CreateChat(ctx, "Other", nil)
	req.NoError(err)
	for _, content := range []string{"one", "two", "three"} {
		req.NoError(alice.SendMessage(ctx, chatID, content))
	}

	firstChats, err := alice.ListChats(ctx)
	req.NoError(err)
	secondChats, err := alice.ListChats(ctx)
	req.NoError(err)
	req.Len(firstChats, 2)
	req.Equal(firstChats, secondChats)

	firstMessages, err := alice.ListMessages(ctx, chatID)
	req.NoError(err)
	secondMessages, err := alice.ListMessages(ctx, chatID)
	req.NoError(err)
	req.Len(firstMessages, 3)
	req.Equal(firstMessages, secondMessages)
}

func Test_Scenario_anonymous_guest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	anonymous := startStack(t).client

	alice, _ := register(t, anonymous, "alice@example.com", "Alice")
	res, err := anonymous.SignInAnonymously(ctx)
	req.NoError(err)
	guest := anonymous.WithToken(res.Token)

	profile, err := guest.Me(ctx)
	req.NoError(err)
	req.Equal(&api.UserProfile{ID: res.UserID, Name: "Unknown", Anonymous: true}, profile)

	profile, err = alice.Me(ctx)
	req.NoError(err)
	req.Equal("Alice", profile.Name)
	req.Equal("alice@example.com", profile.Email)
	req.False(profile.Anonymous)

	// A guest chats like anyone else and shows up as Unknown
	chatID, err := alice.CreateChat(ctx, "Team", []string{res.UserID})
	req.NoError(err)
	req.NoError(guest.SendMessage(ctx, chatID, "hi from a guest"))
	messages, err := alice.ListMessages(ctx, chatID)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("Unknown", messages[0].SenderName)

	_, err = anonymous.Me(ctx)
	req.Equal(codes.Unauthenticated, status.Code(err))
}

func Test_Scenario_shutdown_with_open_subscription(t *testing.T) {
	req := require.New(t)
	st := startStack(t)
	ctx := context.Background()

	bob, _ := register(t, st.client, "bob@example.com", "Bob")
	stream, err := bob.SubscribeChats(ctx)
	req.NoError(err)
	_, err = stream.Recv()
	req.NoError(err)

	st.chatServer.Close()
	stopped := make(chan struct{})
	go func() {
		st.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		req.Fail("graceful stop blocked by an open subscription")
	}
}
