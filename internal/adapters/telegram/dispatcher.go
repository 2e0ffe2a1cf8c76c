package telegram

import (
	"context"

	"dabwish/internal/events"
	"dabwish/pkg/logger"
)

// ChatLookup finds the chat registered for a username
type ChatLookup interface {
	GetChatID(ctx context.Context, username string) (int64, bool, error)
}

// WishNotificationDispatcher delivers wish notifications to subscribers that
// have opened a chat with the bot. Nothing is queued for the others.
type WishNotificationDispatcher struct {
	chats     ChatLookup
	messenger *Messenger
	log       *logger.Logger
}

// NewWishNotificationDispatcher creates a dispatcher
func NewWishNotificationDispatcher(chats ChatLookup, messenger *Messenger, log *logger.Logger) *WishNotificationDispatcher {
	return &WishNotificationDispatcher{
		chats:     chats,
		messenger: messenger,
		log:       log.With("component", "wish_notifications"),
	}
}

// Dispatch sends e to its subscriber. Only a failed chat lookup is returned;
// unknown chats and send failures are logged.
func (d *WishNotificationDispatcher) Dispatch(ctx context.Context, e *events.WishNotificationEvent) error {
	username := e.SubscriberTelegramUsername
	chatID, ok, err := d.chats.GetChatID(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		d.log.Infow("Skip wish notification, chat not registered", "telegram_username", username, "wish_id", e.WishID)
		return nil
	}

	if err := d.messenger.SendWishNotification(ctx, chatID, e); err != nil {
		d.log.Warnw("Failed to send wish notification",
			"chat_id", chatID, "telegram_username", username, "wish_id", e.WishID, "error", err)
		return nil
	}

	d.log.Infow("Sent wish notification", "chat_id", chatID, "wish_id", e.WishID, "subscriber_id", e.SubscriberID)
	return nil
}
