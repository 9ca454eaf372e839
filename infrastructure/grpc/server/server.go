package server

import (
	"groupchat/auth"
	"log/slog"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
)

// NewGRPCServer builds a server exposing both services behind the logging and JWT interceptors.
func NewGRPCServer(logger *slog.Logger, tokens auth.TokenManager, authServer AuthServiceServer, chatServer ChatServiceServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(logger),
			auth.UnaryInterceptor(tokens),
		),
		grpc.ChainStreamInterceptor(
			auth.StreamInterceptor(tokens),
		),
	)
	RegisterAuthServiceServer(s, authServer)
	RegisterChatServiceServer(s, chatServer)
	return s
}
