package telegram

import (
	"context"
)

// Parse modes accepted by sendMessage
const (
	ParseModeHTML       = "HTML"
	ParseModeMarkdownV2 = "MarkdownV2"
)

// UpdateHandler processes one incoming update
type UpdateHandler func(ctx context.Context, update Update)

// Sender is the outbound half of a bot
type Sender interface {
	// SendMessage sends plain text
	SendMessage(ctx context.Context, chatID int64, text string) error

	// SendMessageWithOptions sends text with formatting options and returns the message id
	SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts MessageOptions) (int, error)
}

// Bot abstracts a long-polling Telegram bot
type Bot interface {
	Sender

	// Start clears any webhook and polls for updates until ctx is done
	Start(ctx context.Context) error

	// Stop stops polling and clears the webhook
	Stop()

	// SetHandler sets the update handler; must be called before Start
	SetHandler(handler UpdateHandler)
}

// MessageOptions defines options for sending messages
type MessageOptions struct {
	// ParseMode (HTML, MarkdownV2); empty sends plain text
	ParseMode string

	DisableWebPagePreview bool
	DisableNotification   bool
}
