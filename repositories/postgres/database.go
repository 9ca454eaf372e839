// Package postgres provides the relational implementation of the repositories,
// used when the server runs with STORE_DRIVER=postgres.
package postgres

import (
	"context"
	"fmt"
	"groupchat/repositories"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ repositories.IChatRepository    = ChatRepository{}
	_ repositories.IMessageRepository = MessageRepository{}
	_ repositories.IUserRepository    = (*UserRepository)(nil)
)

type chatRecord struct {
	ID           string              `gorm:"primaryKey;type:varchar(64)"`
	Name         string              `gorm:"not null"`
	CreatedAt    time.Time           `gorm:"not null"`
	Participants []participantRecord `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (chatRecord) TableName() string { return "chats" }

// participantRecord is the membership join table. Position keeps the
// participant order chosen at creation time.
type participantRecord struct {
	ChatID   string `gorm:"primaryKey;type:varchar(64)"`
	UserID   string `gorm:"primaryKey;type:varchar(255);index:idx_chat_participants_user"`
	Position int    `gorm:"not null"`
}

func (participantRecord) TableName() string { return "chat_participants" }

type messageRecord struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	ChatID    string    `gorm:"not null;type:varchar(64);index:idx_messages_chat_created,priority:1"`
	SenderID  string    `gorm:"not null;type:varchar(255)"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_chat_created,priority:2"`
	// Seq is filled by the database and breaks ties between equal timestamps,
	// which happen since Postgres keeps microseconds only
	Seq int64 `gorm:"type:bigserial;not null;<-:false;index:idx_messages_chat_created,priority:3"`
}

func (messageRecord) TableName() string { return "messages" }

type userRecord struct {
	ID           string `gorm:"primaryKey;type:varchar(255)"`
	Email        *string `gorm:"uniqueIndex"` // NULL for anonymous users, the index ignores NULLs
	Name         string
	PasswordHash string
	Roles        string
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

// Open connects to Postgres and creates the schema when missing.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if err = db.WithContext(ctx).AutoMigrate(
		&chatRecord{},
		&participantRecord{},
		&messageRecord{},
		&userRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
