package user

import (
	"context"
)

// Repository defines the interface for user data access.
// Implementation lives in internal/repository/postgres/user.go
type Repository interface {
	Create(ctx context.Context, user *User) error
	// GetByID returns errors.ErrUserNotFound for an unknown id
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByIDForUpdate locks the row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*User, error)
	SetTelegramUsername(ctx context.Context, id int64, username string) error
	Delete(ctx context.Context, id int64) error
}
