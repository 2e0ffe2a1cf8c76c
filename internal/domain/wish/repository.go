package wish

import (
	"context"
)

// Repository defines the interface for wish data access.
// Implementation lives in internal/repository/postgres/wish.go
type Repository interface {
	Create(ctx context.Context, w *Wish) error
	// GetByID returns errors.ErrWishNotFound for an unknown id
	GetByID(ctx context.Context, id int64) (*Wish, error)
	// GetByIDs returns the wishes that exist, in no particular order
	GetByIDs(ctx context.Context, ids []int64) ([]Wish, error)
	Update(ctx context.Context, w *Wish) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Wish, int, error)
	// ListAfter pages through all wishes ordered by id
	ListAfter(ctx context.Context, afterID int64, limit int) ([]Wish, error)
	// CountByPhotoURL counts wishes referencing the same stored photo
	CountByPhotoURL(ctx context.Context, url string) (int, error)
	// SearchByText is a case-insensitive substring match over title and
	// description, used when no SearchIndex is configured
	SearchByText(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]Wish, int, error)
}

// SearchIndex mirrors wishes for full-text search. Results are advisory;
// callers hydrate ids from the Repository.
type SearchIndex interface {
	Upsert(ctx context.Context, docs ...Document) error
	Delete(ctx context.Context, id int64) error
	// Search returns one page of matching ids and the total number of matches
	Search(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]int64, int, error)
}

// NoopIndex is used when search is disabled
type NoopIndex struct{}

func (NoopIndex) Upsert(context.Context, ...Document) error { return nil }

func (NoopIndex) Delete(context.Context, int64) error { return nil }

func (NoopIndex) Search(context.Context, string, *int64, int, int) ([]int64, int, error) {
	return nil, 0, nil
}
