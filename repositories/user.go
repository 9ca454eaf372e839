//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix  = "user:"
	emailPrefix = "email:"
)

// Roles granted at account creation.
const (
	RoleUser      = "user"
	RoleAnonymous = "anonymous"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, email, name, hashedPassword string) (string, error)
	// CreateAnonymousUser stores a guest without email, name or password.
	CreateAnonymousUser(ctx context.Context) (string, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func emailKey(email string) []byte {
	return []byte(emailPrefix + strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser persists the user in BadgerDB together with its email index.
// It returns the newly generated User ID
func (u UserRepository) CreateUser(_ context.Context, email, name, hashedPassword string) (string, error) {
	user := domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Roles:        []string{RoleUser},
		CreatedAt:    time.Now().UTC(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		key := emailKey(email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(key, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+user.ID), encodeUser(user))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// CreateAnonymousUser skips the email index, so a guest can never log in with a password.
func (u UserRepository) CreateAnonymousUser(_ context.Context) (string, error) {
	user := domain.User{
		ID:        uuid.New().String(),
		Roles:     []string{RoleAnonymous},
		CreatedAt: time.Now().UTC(),
	}
	err := u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userPrefix+user.ID), encodeUser(user))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetUserByEmail resolves the email index then loads the user.
func (u UserRepository) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", errors.ErrUserNotFound, email)
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(_ context.Context, id string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

func getUser(txn *badger.Txn, id string) (domain.User, error) {
	item, err := txn.Get([]byte(userPrefix + id))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
	}
	if err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err = item.Value(func(value []byte) error {
		user, err = decodeUser(value)
		return err
	})
	return user, err
}
