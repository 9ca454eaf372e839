package server

import (
	"context"
	"groupchat/api"
	"groupchat/contract"
	"groupchat/errors"
)

var _ AuthServiceServer = (*AuthServer)(nil)

type AuthServer struct {
	authService contract.IAuthService
}

func NewAuthServer(authService contract.IAuthService) *AuthServer {
	return &AuthServer{authService: authService}
}

func (s *AuthServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	result, err := s.authService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.AuthResponse{Token: result.Token, UserID: result.UserID}, nil
}

func (s *AuthServer) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	result, err := s.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.AuthResponse{Token: result.Token, UserID: result.UserID}, nil
}

func (s *AuthServer) SignInAnonymously(ctx context.Context, _ *api.SignInAnonymouslyRequest) (*api.AuthResponse, error) {
	result, err := s.authService.SignInAnonymously(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.AuthResponse{Token: result.Token, UserID: result.UserID}, nil
}

// Me needs a token, unlike the other methods of the service.
func (s *AuthServer) Me(ctx context.Context, _ *api.MeRequest) (*api.UserProfile, error) {
	profile, err := s.authService.Me(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	userProfile := api.FromUserProfile(profile)
	return &userProfile, nil
}
