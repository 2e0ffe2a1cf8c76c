package verification

import (
	"context"
	"time"
)

// Repository defines the interface for verification code storage.
// Implementation lives in internal/repository/postgres/verification_code.go
type Repository interface {
	Create(ctx context.Context, c *Code) error
	// GetForUser returns the user's row when it holds code, and
	// errors.ErrNotFound otherwise. Codes are not unique across users.
	GetForUser(ctx context.Context, userID int64, code string) (*Code, error)
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteByID(ctx context.Context, id int64) error
	// ListExpiredIDs returns ids of rows with expires_at before now
	ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)
}
