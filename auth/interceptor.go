package auth

import (
	"context"

	"groupchat/api"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Map of methods that do not require JWT authentication.
var publicMethods = map[string]struct{}{
	api.AuthService_Login_FullMethodName:             {},
	api.AuthService_Register_FullMethodName:          {},
	api.AuthService_SignInAnonymously_FullMethodName: {},
}

// UnaryInterceptor handles JWT validation for incoming unary gRPC calls.
func UnaryInterceptor(tokens TokenManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		// Skip authentication for public methods (Login/Register)
		if isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}
		newCtx, err := authenticate(ctx, tokens)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// StreamInterceptor is the streaming counterpart of UnaryInterceptor.
func StreamInterceptor(tokens TokenManager) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if isPublicMethod(info.FullMethod) {
			return handler(srv, ss)
		}
		newCtx, err := authenticate(ss.Context(), tokens)
		if err != nil {
			return err
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: newCtx})
	}
}

func authenticate(ctx context.Context, tokens TokenManager) (context.Context, error) {
	// Extract metadata (headers) from the incoming gRPC context
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}

	tokenStr, ok := BearerToken(values[0])
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authorization must be a bearer token")
	}

	claims, err := tokens.ValidateToken(tokenStr)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}
	return WithClaims(ctx, claims), nil
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}

// isPublicMethod checks if the current gRPC method is allowed without a token.
func isPublicMethod(method string) bool {
	_, ok := publicMethods[method]
	return ok
}
