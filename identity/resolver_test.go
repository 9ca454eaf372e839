package identity

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"
	"time"

	"groupchat/auth"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/mocks"
	"groupchat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestResolver_CurrentUser(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver(slog.Default(), nil)

	_, err := resolver.CurrentUser(context.Background())
	req.ErrorIs(err, errors.ErrUnauthenticated)

	tokens := auth.NewTokenManager("secret", time.Minute)
	token, err := tokens.GenerateToken("user-a", nil)
	req.NoError(err)
	claims, err := tokens.ValidateToken(token)
	req.NoError(err)

	userID, err := resolver.CurrentUser(auth.WithClaims(context.Background(), claims))
	req.NoError(err)
	req.Equal("user-a", userID)
}

func TestResolver_DisplayNames(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(openTestDB(t))

	alice, err := users.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	req.NoError(err)
	nameless, err := users.CreateUser(ctx, "nameless@example.com", "", "hash")
	req.NoError(err)

	resolver := NewResolver(slog.Default(), users)
	names := resolver.DisplayNames(ctx, []string{alice, "ghost", alice, nameless, ""})

	req.Equal(map[string]string{
		alice:    "Alice",
		"ghost":  domain.UnknownUserName,
		nameless: domain.UnknownUserName,
	}, names)
}

func TestResolver_DisplayNames_LookupFailureFallsBackToUnknown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	// Each distinct id is looked up once
	users.EXPECT().GetUserByID(gomock.Any(), "a").Return(domain.User{ID: "a", Name: "Alice"}, nil).Times(1)
	users.EXPECT().GetUserByID(gomock.Any(), "b").Return(domain.User{}, goerrors.New("disk on fire")).Times(1)

	names := NewResolver(slog.Default(), users).DisplayNames(context.Background(), []string{"a", "b", "a"})

	req.Equal("Alice", names["a"])
	req.Equal(domain.UnknownUserName, names["b"])
}
