package postgres

import (
	"context"
	"database/sql"

	"dabwish/internal/domain/chatlink"
	"dabwish/pkg/errors"
)

// Compile-time check that we implement the interface
var _ chatlink.Repository = (*ChatLinkRepository)(nil)

// ChatLinkRepository implements chatlink.Repository using sqlx
type ChatLinkRepository struct {
	db DBTX
}

// NewChatLinkRepository creates a new chat link repository
func NewChatLinkRepository(db DBTX) *ChatLinkRepository {
	return &ChatLinkRepository{db: db}
}

// Upsert stores the chat for username. Re-registration overwrites chat_id and
// keeps a previously known user_id when userID is nil.
func (r *ChatLinkRepository) Upsert(ctx context.Context, username string, chatID int64, userID *int64) error {
	query := `
		INSERT INTO telegram_chat_links (telegram_username, chat_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_username) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
		    user_id = COALESCE(EXCLUDED.user_id, telegram_chat_links.user_id),
		    updated_at = NOW()`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, username, chatID, userID); err != nil {
		return errors.Wrap(err, "upsert chat link")
	}
	return nil
}

// GetByUsername looks up the chat registered for a normalized username
func (r *ChatLinkRepository) GetByUsername(ctx context.Context, username string) (*chatlink.ChatLink, error) {
	var link chatlink.ChatLink
	query := `
		SELECT id, user_id, telegram_username, chat_id, created_at, updated_at
		FROM telegram_chat_links
		WHERE telegram_username = $1`

	err := conn(ctx, r.db).GetContext(ctx, &link, query, username)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select chat link")
	}
	return &link, nil
}
