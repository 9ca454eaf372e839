package services

import (
	"context"
	"fmt"
	"groupchat/auth"
	"groupchat/contract"
	"groupchat/errors"
	"groupchat/repositories"
	"log/slog"
)

var _ contract.IAuthService = (*AuthService)(nil)

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         auth.TokenManager
	hasher         auth.PasswordHasher
	validator      *auth.Validator
}

func NewAuthService(
	log *slog.Logger,
	repo repositories.IUserRepository,
	tokens auth.TokenManager,
	hasher auth.PasswordHasher,
	validator *auth.Validator,
) *AuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens, hasher: hasher, validator: validator}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (contract.AuthResult, error) {
	// Validated before any expensive cryptographic operation
	if err := s.validator.ValidateRegister(email, password, name); err != nil {
		return contract.AuthResult{}, fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}

	// The repository never sees plain passwords
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return contract.AuthResult{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(ctx, email, name, hashedPassword)
	if err != nil {
		return contract.AuthResult{}, err
	}
	s.log.Info("User registered", "user_id", userID)

	return s.issue(userID, []string{repositories.RoleUser})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (contract.AuthResult, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		// Same error whatever failed, no user enumeration
		return contract.AuthResult{}, errors.ErrInvalidCredentials
	}

	match, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil || !match {
		return contract.AuthResult{}, errors.ErrInvalidCredentials
	}
	return s.issue(user.ID, user.Roles)
}

// SignInAnonymously creates a fresh guest on every call. Guests show up as
// "Unknown" to the other participants.
func (s *AuthService) SignInAnonymously(ctx context.Context) (contract.AuthResult, error) {
	userID, err := s.userRepository.CreateAnonymousUser(ctx)
	if err != nil {
		return contract.AuthResult{}, err
	}
	s.log.Info("Anonymous user signed in", "user_id", userID)
	return s.issue(userID, []string{repositories.RoleAnonymous})
}

func (s *AuthService) Me(ctx context.Context) (contract.UserProfile, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return contract.UserProfile{}, errors.ErrUnauthenticated
	}
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return contract.UserProfile{}, err
	}
	return contract.UserProfile{
		ID:        user.ID,
		Name:      user.DisplayName(),
		Email:     user.Email,
		Anonymous: user.IsAnonymous(),
	}, nil
}

func (s *AuthService) issue(userID string, roles []string) (contract.AuthResult, error) {
	token, err := s.tokens.GenerateToken(userID, roles)
	if err != nil {
		return contract.AuthResult{}, errors.ErrTokenGeneration
	}
	return contract.AuthResult{Token: token, UserID: userID}, nil
}
