package postgres

import (
	"context"
	goerrors "errors"
	"fmt"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/repositories"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *UserRepository) CreateUser(ctx context.Context, email, name, hashedPassword string) (string, error) {
	normalized := normalizeEmail(email)
	record := userRecord{
		ID:           uuid.New().String(),
		Email:        &normalized,
		Name:         name,
		PasswordHash: hashedPassword,
		Roles:        repositories.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRecord{}).Where("email = ?", normalized).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.ErrUserAlreadyExists
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (u *UserRepository) CreateAnonymousUser(ctx context.Context) (string, error) {
	record := userRecord{
		ID:        uuid.New().String(),
		Roles:     repositories.RoleAnonymous,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (u *UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return u.first(ctx, "email = ?", normalizeEmail(email))
}

func (u *UserRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserRepository) first(ctx context.Context, query string, arg string) (domain.User, error) {
	var record userRecord
	err := u.db.WithContext(ctx).First(&record, query, arg).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, arg)
	}
	if err != nil {
		return domain.User{}, err
	}
	var email string
	if record.Email != nil {
		email = *record.Email
	}
	return domain.User{
		ID:           record.ID,
		Email:        email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		Roles:        strings.Split(record.Roles, ","),
		CreatedAt:    record.CreatedAt.UTC(),
	}, nil
}
