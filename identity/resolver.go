// Package identity maps an authenticated request to its user and user ids
// to the names shown next to chats and messages.
package identity

import (
	"context"
	goerrors "errors"
	"fmt"
	"groupchat/auth"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/repositories"
	"log/slog"

	"github.com/samber/lo"
)

var _ contract.IIdentityResolver = (*Resolver)(nil)

type Resolver struct {
	log   *slog.Logger
	users repositories.IUserRepository
}

func NewResolver(log *slog.Logger, users repositories.IUserRepository) *Resolver {
	return &Resolver{log: log, users: users}
}

// CurrentUser returns the user id injected by the transport authentication layer.
func (r *Resolver) CurrentUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no identity on request", errors.ErrUnauthenticated)
	}
	return userID, nil
}

// DisplayNames resolves each distinct id once. Missing users map to domain.UnknownUserName.
func (r *Resolver) DisplayNames(ctx context.Context, userIDs []string) map[string]string {
	ids := lo.Uniq(lo.Compact(userIDs))
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		user, err := r.users.GetUserByID(ctx, id)
		switch {
		case err == nil:
			names[id] = user.DisplayName()
		case goerrors.Is(err, errors.ErrUserNotFound):
			names[id] = domain.UnknownUserName
		default:
			r.log.Warn("Unable to resolve display name", "user_id", id, "error", err)
			names[id] = domain.UnknownUserName
		}
	}
	return names
}
