package postgres

import (
	"context"
	"database/sql"

	"dabwish/internal/domain/user"
	"dabwish/pkg/errors"
)

// Compile-time check that we implement the interface
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, role, telegram_username, created_at, updated_at`

// Create inserts a new user and fills the generated id and timestamp
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (name, role, telegram_username)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, u.Name, u.Role, u.TelegramUsername).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, id int64) (*user.User, error) {
	var u user.User
	err := conn(ctx, r.db).GetContext(ctx, &u, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrUserNotFound, "id %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}
	return &u, nil
}

// SetTelegramUsername links a verified Telegram account to the user
func (r *UserRepository) SetTelegramUsername(ctx context.Context, id int64, username string) error {
	query := `UPDATE users SET telegram_username = $2, updated_at = NOW() WHERE id = $1`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, username)
	if err != nil {
		return errors.Wrap(err, "update telegram username")
	}
	return requireAffected(res, errors.ErrUserNotFound)
}

// Delete removes a user; wishes, subscriptions and codes cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	return requireAffected(res, errors.ErrUserNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
