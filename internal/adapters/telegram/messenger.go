package telegram

import (
	"context"
	"strconv"
	"strings"

	"dabwish/internal/events"
	"dabwish/internal/metrics"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
	"dabwish/pkg/templates"
)

// Message kinds, used as metric labels
const (
	kindWelcome          = "welcome"
	kindVerification     = "verification"
	kindWishNotification = "wish_notification"
)

// Renderer renders a message template by id
type Renderer interface {
	Render(id string, data any) (string, error)
}

// Messenger renders and sends every message the notifier writes to users
type Messenger struct {
	sender          telegram.Sender
	templates       Renderer
	frontendBaseURL string
	log             *logger.Logger
}

// NewMessenger creates a messenger. Links in notifications point at frontendBaseURL.
func NewMessenger(sender telegram.Sender, templates Renderer, frontendBaseURL string, log *logger.Logger) *Messenger {
	return &Messenger{
		sender:          sender,
		templates:       templates,
		frontendBaseURL: strings.TrimSuffix(frontendBaseURL, "/"),
		log:             log.With("component", "telegram_messenger"),
	}
}

type welcomeData struct {
	Username string
	Code     string
}

type wishNotificationData struct {
	OwnerName string
	WishTitle string
	WishURL   string
}

// SendWelcome greets a user who opened the chat; a non-empty code is appended
func (m *Messenger) SendWelcome(ctx context.Context, chatID int64, username, code string) error {
	return m.send(ctx, kindWelcome, chatID, templates.TelegramWelcome,
		welcomeData{Username: username, Code: code}, telegram.MessageOptions{})
}

// SendVerificationCode delivers a code to a chat that is already registered
func (m *Messenger) SendVerificationCode(ctx context.Context, chatID int64, username, code string) error {
	return m.send(ctx, kindVerification, chatID, templates.TelegramVerificationCode,
		welcomeData{Username: username, Code: code}, telegram.MessageOptions{})
}

// SendWishNotification tells a subscriber about a new wish
func (m *Messenger) SendWishNotification(ctx context.Context, chatID int64, e *events.WishNotificationEvent) error {
	data := wishNotificationData{
		OwnerName: e.OwnerName,
		WishTitle: e.WishTitle,
		WishURL:   m.WishURL(e.WishID),
	}
	return m.send(ctx, kindWishNotification, chatID, templates.TelegramWishNotification, data,
		telegram.MessageOptions{ParseMode: telegram.ParseModeHTML})
}

// WishURL is the frontend page of a wish
func (m *Messenger) WishURL(wishID int64) string {
	return m.frontendBaseURL + "/wishes/" + strconv.FormatInt(wishID, 10)
}

func (m *Messenger) send(ctx context.Context, kind string, chatID int64, tmpl string, data any, opts telegram.MessageOptions) error {
	text, err := m.templates.Render(tmpl, data)
	if err != nil {
		metrics.RecordTelegramSend(kind, err)
		return err
	}

	_, err = m.sender.SendMessageWithOptions(ctx, chatID, strings.TrimSpace(text), opts)
	metrics.RecordTelegramSend(kind, err)
	return err
}
