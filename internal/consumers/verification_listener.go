package consumers

import (
	"context"

	"dabwish/internal/events"
	"dabwish/pkg/logger"
)

// ChatLookup finds the chat registered for a username
type ChatLookup interface {
	GetChatID(ctx context.Context, username string) (int64, bool, error)
}

// PendingStore parks codes until the user opens a chat with the bot
type PendingStore interface {
	Store(event events.TelegramVerificationCodeEvent)
}

// CodeSender delivers a verification code to a chat
type CodeSender interface {
	SendVerificationCode(ctx context.Context, chatID int64, username, code string) error
}

// VerificationListener delivers verification codes right away when the chat
// is known and parks them in the pending store otherwise
type VerificationListener struct {
	chats   ChatLookup
	pending PendingStore
	sender  CodeSender
	log     *logger.Logger
}

// NewVerificationListener creates a new listener
func NewVerificationListener(chats ChatLookup, pending PendingStore, sender CodeSender, log *logger.Logger) *VerificationListener {
	return &VerificationListener{
		chats:   chats,
		pending: pending,
		sender:  sender,
		log:     log.With("component", "verification_listener"),
	}
}

// Handle processes one verification event. Send failures are logged and the
// event still counts as processed.
func (l *VerificationListener) Handle(ctx context.Context, e *events.TelegramVerificationCodeEvent) error {
	l.log.Infow("Received verification event", "telegram_username", e.TelegramUsername, "user_id", e.UserID)

	chatID, ok, err := l.chats.GetChatID(ctx, e.TelegramUsername)
	if err != nil {
		return err
	}
	if !ok {
		l.log.Infow("Chat not registered yet, storing code for later", "telegram_username", e.TelegramUsername)
		l.pending.Store(*e)
		return nil
	}

	if err := l.sender.SendVerificationCode(ctx, chatID, e.TelegramUsername, e.VerificationCode); err != nil {
		l.log.Warnw("Failed to send verification code", "chat_id", chatID, "telegram_username", e.TelegramUsername, "error", err)
		return nil
	}
	l.log.Infow("Sent verification code", "chat_id", chatID, "telegram_username", e.TelegramUsername)
	return nil
}
