package errors

import (
	goerrors "errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnauthenticated    = goerrors.New("not authenticated")
	ErrChatNotFound       = goerrors.New("chat not found")
	ErrNotParticipant     = goerrors.New("not a participant")
	ErrInvalidChatName    = goerrors.New("invalid chat name")
	ErrInvalidRequest     = goerrors.New("invalid request")
	ErrUserNotFound       = goerrors.New("user not found")
	ErrUserAlreadyExists  = goerrors.New("user already exists")
	ErrInvalidCredentials = goerrors.New("invalid credentials")
	ErrInvalidPassword    = goerrors.New("invalid password")
	ErrTokenGeneration    = goerrors.New("token generation failed")
	ErrInvalidHash        = goerrors.New("invalid password hash")
	ErrWorkerPanic        = goerrors.New("worker panic")
)

// MapToGRPCError translates domain errors into gRPC status errors.
// Anything unknown is reported as Internal without leaking its message.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(grpcCode(err), publicMessage(err))
}

func grpcCode(err error) codes.Code {
	switch {
	case goerrors.Is(err, ErrUnauthenticated), goerrors.Is(err, ErrInvalidCredentials):
		return codes.Unauthenticated
	case goerrors.Is(err, ErrChatNotFound), goerrors.Is(err, ErrUserNotFound):
		return codes.NotFound
	case goerrors.Is(err, ErrNotParticipant):
		return codes.PermissionDenied
	case goerrors.Is(err, ErrInvalidChatName), goerrors.Is(err, ErrInvalidRequest),
		goerrors.Is(err, ErrInvalidPassword):
		return codes.InvalidArgument
	case goerrors.Is(err, ErrUserAlreadyExists):
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

// HTTPStatus is the HTTP counterpart of MapToGRPCError.
func HTTPStatus(err error) int {
	switch grpcCode(err) {
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to a client for err.
func PublicMessage(err error) string {
	return publicMessage(err)
}

func publicMessage(err error) string {
	if grpcCode(err) == codes.Internal {
		return "internal error"
	}
	return err.Error()
}
