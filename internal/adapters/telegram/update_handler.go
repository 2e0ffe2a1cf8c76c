package telegram

import (
	"context"
	"strings"

	"dabwish/internal/events"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

// ChatRegistrar stores the chat a username can be reached at
type ChatRegistrar interface {
	Register(ctx context.Context, username string, chatID int64, userID *int64) error
}

// PendingConsumer hands out verification codes waiting for a chat
type PendingConsumer interface {
	Consume(username string) (events.TelegramVerificationCodeEvent, bool)
}

// BotUpdateHandler reacts to messages users send to the bot. Only /start
// does anything: it registers the chat and delivers a waiting code.
type BotUpdateHandler struct {
	registry  ChatRegistrar
	pending   PendingConsumer
	messenger *Messenger
	log       *logger.Logger
}

// NewBotUpdateHandler creates a new update handler
func NewBotUpdateHandler(registry ChatRegistrar, pending PendingConsumer, messenger *Messenger, log *logger.Logger) *BotUpdateHandler {
	return &BotUpdateHandler{
		registry:  registry,
		pending:   pending,
		messenger: messenger,
		log:       log.With("component", "telegram_updates"),
	}
}

// HandleUpdate implements telegram.UpdateHandler
func (h *BotUpdateHandler) HandleUpdate(ctx context.Context, update telegram.Update) {
	if !update.HasMessage() {
		h.log.Debugw("Update has no message, ignoring", "update_id", update.UpdateID)
		return
	}

	msg := update.Message
	chatID := msg.ChatID()
	username := msg.SenderUsername()
	if strings.TrimSpace(username) == "" {
		var first, last string
		if msg.From != nil {
			first, last = msg.From.FirstName, msg.From.LastName
		}
		h.log.Warnw("Message without username, ignoring", "chat_id", chatID, "first_name", first, "last_name", last)
		return
	}

	if !strings.HasPrefix(msg.Text, "/start") {
		h.log.Debugw("Message is not /start, ignoring", "chat_id", chatID)
		return
	}

	h.handleStart(ctx, chatID, username)
}

func (h *BotUpdateHandler) handleStart(ctx context.Context, chatID int64, username string) {
	if err := h.registry.Register(ctx, username, chatID, nil); err != nil {
		h.log.Errorw("Failed to register chat", "chat_id", chatID, "telegram_username", username, "error", err)
		return
	}

	var code string
	if pending, ok := h.pending.Consume(username); ok {
		// The store is keyed by normalized username, so this only guards against a bad entry
		if telegram.NormalizeUsername(pending.TelegramUsername) == telegram.NormalizeUsername(username) {
			code = pending.VerificationCode
			h.log.Infow("Delivering pending verification code", "telegram_username", username, "user_id", pending.UserID)
		} else {
			h.log.Warnw("Pending verification username mismatch, code discarded",
				"telegram_username", username,
				"event_username", pending.TelegramUsername,
				"user_id", pending.UserID,
			)
		}
	}

	if err := h.messenger.SendWelcome(ctx, chatID, username, code); err != nil {
		h.log.Warnw("Failed to send welcome message", "chat_id", chatID, "telegram_username", username, "error", err)
		return
	}
	h.log.Infow("Sent welcome message", "chat_id", chatID, "telegram_username", username, "with_code", code != "")
}
