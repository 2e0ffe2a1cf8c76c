package telegram

import (
	"context"

	"dabwish/internal/domain/chatlink"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

// ChatRegistry remembers which chat the bot can use to reach a username
type ChatRegistry struct {
	repo chatlink.Repository
	log  *logger.Logger
}

// NewChatRegistry creates a registry backed by repo
func NewChatRegistry(repo chatlink.Repository, log *logger.Logger) *ChatRegistry {
	return &ChatRegistry{repo: repo, log: log.With("component", "chat_registry")}
}

// Register links username to chatID. Calling it again overwrites the chat id;
// a nil userID keeps the user id already stored.
func (r *ChatRegistry) Register(ctx context.Context, username string, chatID int64, userID *int64) error {
	normalized := telegram.NormalizeUsername(username)
	if normalized == "" {
		return errors.NewValidationError("telegramUsername", "is required", username)
	}

	if err := r.repo.Upsert(ctx, normalized, chatID, userID); err != nil {
		return errors.Wrapf(err, "register chat for @%s", normalized)
	}

	r.log.Infow("Registered Telegram chat", "telegram_username", normalized, "chat_id", chatID)
	return nil
}

// GetChatID returns the chat registered for username. ok is false when none is known.
func (r *ChatRegistry) GetChatID(ctx context.Context, username string) (chatID int64, ok bool, err error) {
	link, err := r.repo.GetByUsername(ctx, telegram.NormalizeUsername(username))
	if errors.Is(err, errors.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "lookup chat id")
	}
	return link.ChatID, true, nil
}
