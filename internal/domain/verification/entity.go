package verification

import (
	"time"
)

// Code is a Telegram verification code waiting for confirmation.
// At most one row exists per user.
type Code struct {
	ID               int64     `db:"id"`
	UserID           int64     `db:"user_id"`
	TelegramUsername string    `db:"telegram_username"`
	Code             string    `db:"verification_code"`
	ExpiresAt        time.Time `db:"expires_at"`
	CreatedAt        time.Time `db:"created_at"`
}

// IsExpired reports whether the code's TTL elapsed at now
func (c *Code) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
