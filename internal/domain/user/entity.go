package user

import (
	"time"
)

// Role controls what a user may do in the admin surface
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered wish-list owner
type User struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Role Role   `db:"role" json:"role"`
	// TelegramUsername is set only after verification and is stored normalized
	TelegramUsername *string    `db:"telegram_username" json:"telegramUsername,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// HasTelegram reports whether a Telegram account is linked
func (u *User) HasTelegram() bool {
	return u.TelegramUsername != nil && *u.TelegramUsername != ""
}
