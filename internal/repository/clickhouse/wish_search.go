package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"dabwish/internal/domain/wish"
	"dabwish/pkg/errors"
)

// DefaultWishSearchTable is the table the core service indexes into
const DefaultWishSearchTable = "wish_search"

// Compile-time check
var _ wish.SearchIndex = (*WishSearchIndex)(nil)

// WishSearchIndex implements wish.SearchIndex using ClickHouse.
// Rows are versioned; the newest version of an id wins when read with FINAL.
type WishSearchIndex struct {
	conn  driver.Conn
	table string
	now   func() time.Time
}

// NewWishSearchIndex creates a search index over table
func NewWishSearchIndex(conn driver.Conn, table string) *WishSearchIndex {
	if table == "" {
		table = DefaultWishSearchTable
	}
	return &WishSearchIndex{conn: conn, table: table, now: time.Now}
}

// EnsureSchema creates the search table when it does not exist
func (r *WishSearchIndex) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          Int64,
			owner_id    Int64,
			title       String,
			description String,
			photo_url   String,
			price       String,
			created_at  DateTime64(3, 'UTC'),
			updated_at  Nullable(DateTime64(3, 'UTC')),
			version     UInt64
		)
		ENGINE = ReplacingMergeTree(version)
		ORDER BY id`, r.table)

	if err := r.conn.Exec(ctx, query); err != nil {
		return errors.Wrap(err, "failed to create wish search table")
	}
	return nil
}

// Upsert writes the documents in one batch
func (r *WishSearchIndex) Upsert(ctx context.Context, docs ...wish.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			id, owner_id, title, description, photo_url, price, created_at, updated_at, version
		)`, r.table))
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	version := uint64(r.now().UnixNano())
	for _, d := range docs {
		err := batch.Append(
			d.ID, d.OwnerID, d.Title, d.Description, d.PhotoURL, d.Price,
			d.CreatedAt, d.UpdatedAt, version,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append document")
		}
	}

	return errors.Wrap(batch.Send(), "failed to send batch")
}

// Delete removes every version of the document
func (r *WishSearchIndex) Delete(ctx context.Context, id int64) error {
	err := r.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	return errors.Wrap(err, "failed to delete document")
}

// Search returns ids of documents whose title or description contain query,
// title matches first, then newest first, together with the number of matches
func (r *WishSearchIndex) Search(ctx context.Context, query string, excludeOwnerID *int64, limit, offset int) ([]int64, int, error) {
	where := `(positionCaseInsensitiveUTF8(title, $1) > 0 OR positionCaseInsensitiveUTF8(description, $1) > 0)`
	args := []interface{}{query}
	if excludeOwnerID != nil {
		where += ` AND owner_id != $2`
		args = append(args, *excludeOwnerID)
	}

	var total uint64
	countSQL := fmt.Sprintf(`SELECT count() FROM %s FINAL WHERE %s`, r.table, where)
	if err := r.conn.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count wishes")
	}
	if total == 0 {
		return nil, 0, nil
	}

	sql := fmt.Sprintf(`
		SELECT id
		FROM %s FINAL
		WHERE %s
		ORDER BY positionCaseInsensitiveUTF8(title, $1) > 0 DESC, created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, r.table, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rows []struct {
		ID int64 `ch:"id"`
	}
	if err := r.conn.Select(ctx, &rows, sql, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to search wishes")
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, int(total), nil
}
