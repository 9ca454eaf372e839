package services

import (
	"context"
	"groupchat/auth"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// Cheap argon2 parameters keep the suite fast
var testHasher = auth.NewPasswordHasher(auth.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

func newAuthService(repo *mocks.MockIUserRepository, tokens auth.TokenManager) *AuthService {
	return NewAuthService(slog.Default(), repo, tokens, testHasher, auth.NewValidator(12))
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("service-secret", 24*time.Hour)
	svc := newAuthService(mockRepo, tokens)
	ctx := context.Background()

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"
		expectedUserID := "user-uuid"

		// CreateUser receives a hash, never the plain password
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), email, "Alice", gomock.Not(password)).
			Return(expectedUserID, nil).
			Times(1)

		result, err := svc.Register(ctx, email, password, "Alice")

		req.NoError(err)
		req.Equal(expectedUserID, result.UserID)
		claims, err := tokens.ValidateToken(result.Token)
		req.NoError(err)
		req.Equal(expectedUserID, claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		result, err := svc.Register(ctx, "test@example.com", "simplepassword", "Alice")

		req.ErrorIs(err, errors.ErrInvalidRequest)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(result.Token)
	})

	t.Run("should fail when email is malformed", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register(ctx, "not-an-email", "ComplexPass123!", "Alice")

		req.ErrorIs(err, errors.ErrInvalidRequest)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		email := "duplicate@example.com"

		mockRepo.EXPECT().
			CreateUser(gomock.Any(), email, "", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(ctx, email, "ComplexPass123!", "")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("service-secret", 24*time.Hour)
	svc := newAuthService(mockRepo, tokens)
	ctx := context.Background()

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"
		password := "Secret123456!"

		hashedPassword, err := testHasher.Hash(password)
		req.NoError(err)
		storedUser := domain.User{
			ID:           "uuid-123",
			Email:        email,
			PasswordHash: hashedPassword,
			Roles:        []string{"user"},
		}

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), email).
			Return(storedUser, nil).
			Times(1)

		result, err := svc.Login(ctx, email, password)

		req.NoError(err)
		req.Equal(storedUser.ID, result.UserID)
		claims, err := tokens.ValidateToken(result.Token)
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
		req.Equal([]string{"user"}, claims.Roles)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"

		hashedPassword, err := testHasher.Hash("CorrectPassword123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), email).
			Return(domain.User{Email: email, PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err = svc.Login(ctx, email, "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), "unknown@example.com").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := svc.Login(ctx, "unknown@example.com", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_SignInAnonymously(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("service-secret", 24*time.Hour)
	svc := newAuthService(mockRepo, tokens)
	ctx := context.Background()

	t.Run("should issue a guest token", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().CreateAnonymousUser(gomock.Any()).Return("guest-1", nil)

		result, err := svc.SignInAnonymously(ctx)

		req.NoError(err)
		req.Equal("guest-1", result.UserID)
		claims, err := tokens.ValidateToken(result.Token)
		req.NoError(err)
		req.Equal("guest-1", claims.UserID)
		req.Equal([]string{"anonymous"}, claims.Roles)
	})

	t.Run("should propagate storage failures", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().CreateAnonymousUser(gomock.Any()).Return("", context.DeadlineExceeded)

		_, err := svc.SignInAnonymously(ctx)

		req.ErrorIs(err, context.DeadlineExceeded)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := newAuthService(mockRepo, auth.NewTokenManager("service-secret", time.Hour))
	as := func(userID string) context.Context {
		return auth.WithClaims(context.Background(), &auth.CustomClaims{UserID: userID})
	}

	t.Run("should return the registered profile", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByID(gomock.Any(), "alice").
			Return(domain.User{ID: "alice", Email: "alice@example.com", Name: "Alice"}, nil)

		profile, err := svc.Me(as("alice"))

		req.NoError(err)
		req.Equal(contract.UserProfile{ID: "alice", Name: "Alice", Email: "alice@example.com"}, profile)
	})

	t.Run("should name a guest Unknown", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByID(gomock.Any(), "guest").Return(domain.User{ID: "guest"}, nil)

		profile, err := svc.Me(as("guest"))

		req.NoError(err)
		req.Equal(contract.UserProfile{ID: "guest", Name: "Unknown", Anonymous: true}, profile)
	})

	t.Run("should require a caller", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.Me(context.Background())

		req.ErrorIs(err, errors.ErrUnauthenticated)
	})

	t.Run("should report a deleted account as not found", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByID(gomock.Any(), "ghost").Return(domain.User{}, errors.ErrUserNotFound)

		_, err := svc.Me(as("ghost"))

		req.ErrorIs(err, errors.ErrUserNotFound)
	})
}
