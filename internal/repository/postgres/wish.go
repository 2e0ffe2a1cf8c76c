package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"dabwish/internal/domain/wish"
	"dabwish/pkg/errors"
)

// Compile-time check that we implement the interface
var _ wish.Repository = (*WishRepository)(nil)

// WishRepository implements wish.Repository using sqlx
type WishRepository struct {
	db DBTX
}

// NewWishRepository creates a new wish repository
func NewWishRepository(db DBTX) *WishRepository {
	return &WishRepository{db: db}
}

const wishColumns = `id, user_id, title, description, photo_url, price, created_at, updated_at`

// Create inserts a new wish and fills the generated id and timestamp
func (r *WishRepository) Create(ctx context.Context, w *wish.Wish) error {
	query := `
		INSERT INTO wishes (user_id, title, description, photo_url, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, w.UserID, w.Title, w.Description, w.PhotoURL, w.Price).
		Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrapf(errors.ErrUserNotFound, "id %d", w.UserID)
		}
		return errors.Wrap(err, "insert wish")
	}
	return nil
}

// GetByID retrieves a wish by ID
func (r *WishRepository) GetByID(ctx context.Context, id int64) (*wish.Wish, error) {
	var w wish.Wish
	err := conn(ctx, r.db).GetContext(ctx, &w, `SELECT `+wishColumns+` FROM wishes WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrWishNotFound, "id %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select wish")
	}
	return &w, nil
}

// GetByIDs retrieves the wishes that still exist among ids
func (r *WishRepository) GetByIDs(ctx context.Context, ids []int64) ([]wish.Wish, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var wishes []wish.Wish
	err := conn(ctx, r.db).SelectContext(ctx, &wishes,
		`SELECT `+wishColumns+` FROM wishes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "select wishes by ids")
	}
	return wishes, nil
}

// Update overwrites the mutable fields and bumps updated_at
func (r *WishRepository) Update(ctx context.Context, w *wish.Wish) error {
	query := `
		UPDATE wishes
		SET title = $2, description = $3, photo_url = $4, price = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, w.ID, w.Title, w.Description, w.PhotoURL, w.Price).
		Scan(&w.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.Wrapf(errors.ErrWishNotFound, "id %d", w.ID)
	}
	if err != nil {
		return errors.Wrap(err, "update wish")
	}
	return nil
}

// Delete removes a wish
func (r *WishRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM wishes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete wish")
	}
	return requireAffected(res, errors.ErrWishNotFound)
}

// ListByUser returns one page of a user's wishes, newest first, and the total count
func (r *WishRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]wish.Wish, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM wishes WHERE user_id = $1`, userID); err != nil {
		return nil, 0, errors.Wrap(err, "count wishes")
	}
	if total == 0 {
		return []wish.Wish{}, 0, nil
	}

	wishes := make([]wish.Wish, 0, limit)
	query := `
		SELECT ` + wishColumns + `
		FROM wishes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := db.SelectContext(ctx, &wishes, query, userID, limit, offset); err != nil {
		return nil, 0, errors.Wrap(err, "select wishes")
	}
	return wishes, total, nil
}

// ListAfter returns up to limit wishes with id greater than afterID, ordered by id
func (r *WishRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]wish.Wish, error) {
	var wishes []wish.Wish
	query := `SELECT ` + wishColumns + ` FROM wishes WHERE id > $1 ORDER BY id LIMIT $2`
	if err := conn(ctx, r.db).SelectContext(ctx, &wishes, query, afterID, limit); err != nil {
		return nil, errors.Wrap(err, "select wishes page")
	}
	return wishes, nil
}

// CountByPhotoURL counts wishes that reference url
func (r *WishRepository) CountByPhotoURL(ctx context.Context, url string) (int, error) {
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM wishes WHERE photo_url = $1`, url); err != nil {
		return 0, errors.Wrap(err, "count photo references")
	}
	return n, nil
}

// SearchByText matches query against title and description, newest first
func (r *WishRepository) SearchByText(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]wish.Wish, int, error) {
	db := conn(ctx, r.db)
	pattern := likePattern(query)

	where := `
		WHERE (title ILIKE $1 OR COALESCE(description, '') ILIKE $1)
		  AND ($2::BIGINT IS NULL OR user_id <> $2)`

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM wishes`+where, pattern, excludeOwnerID); err != nil {
		return nil, 0, errors.Wrap(err, "count search results")
	}
	if total == 0 {
		return []wish.Wish{}, 0, nil
	}

	wishes := make([]wish.Wish, 0, limit)
	q := `SELECT ` + wishColumns + ` FROM wishes` + where + ` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	if err := db.SelectContext(ctx, &wishes, q, pattern, excludeOwnerID, limit, offset); err != nil {
		return nil, 0, errors.Wrap(err, "search wishes")
	}
	return wishes, total, nil
}

// pq error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
