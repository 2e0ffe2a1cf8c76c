package chatlink

import (
	"context"
	"time"
)

// ChatLink maps a normalized Telegram username to the chat the bot can write to
type ChatLink struct {
	ID               int64     `db:"id"`
	UserID           *int64    `db:"user_id"`
	TelegramUsername string    `db:"telegram_username"`
	ChatID           int64     `db:"chat_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Repository persists chat links.
// Implementation lives in internal/repository/postgres/chat_link.go
type Repository interface {
	// Upsert inserts the link or overwrites chat_id; user_id is only replaced when userID is non-nil
	Upsert(ctx context.Context, username string, chatID int64, userID *int64) error
	// GetByUsername returns errors.ErrNotFound when no link exists
	GetByUsername(ctx context.Context, username string) (*ChatLink, error)
}
