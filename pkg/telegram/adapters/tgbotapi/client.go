package tgbotapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
)

const handlerTimeout = 30 * time.Second

// Bot is a long-polling implementation of telegram.Bot
type Bot struct {
	api         *tgbotapi.BotAPI
	log         *logger.Logger
	rateLimiter *rate.Limiter
	pollTimeout int

	mu        sync.Mutex
	running   bool
	handler   telegram.UpdateHandler
	inflight  sync.WaitGroup
	stopOnce  sync.Once
	cancelRun context.CancelFunc
}

var _ telegram.Bot = (*Bot)(nil)

// Config contains Telegram bot configuration
type Config struct {
	Token          string
	Debug          bool
	PollTimeout    int // long-poll timeout in seconds
	HTTPTimeout    time.Duration
	RateLimitRate  float64 // messages per second
	RateLimitBurst int
	// APIEndpoint overrides the Bot API URL format, e.g. for a local bot API server
	APIEndpoint string
}

// NewBot creates a bot and verifies the token with getMe
func NewBot(cfg Config, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram bot token is required")
	}

	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 60
	}
	if cfg.HTTPTimeout == 0 {
		// must outlast the long-poll timeout
		cfg.HTTPTimeout = time.Duration(cfg.PollTimeout+30) * time.Second
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 25
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 5
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	api.Debug = cfg.Debug

	log = log.With("component", "telegram_bot", "bot", api.Self.UserName)
	log.Infow("Authorized on Telegram")

	return &Bot{
		api:         api,
		log:         log,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// Username returns the bot's own handle
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// SetHandler sets the update handler
func (b *Bot) SetHandler(handler telegram.UpdateHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// Start clears any webhook (dropping updates queued for it) and polls until
// ctx is done or Stop is called. Each update is handled on its own goroutine.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("bot is already running")
	}
	if b.handler == nil {
		b.mu.Unlock()
		return errors.Wrap(errors.ErrInvalidInput, "update handler is not set")
	}
	ctx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancelRun = cancel
	handler := b.handler
	b.mu.Unlock()

	if err := b.DeleteWebhook(true); err != nil {
		cancel()
		return errors.Wrap(err, "clear webhook before polling")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	u.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(u)

	b.log.Infow("Polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return nil

		case tgUpdate, ok := <-updates:
			if !ok {
				return nil
			}
			update := convertUpdate(tgUpdate)
			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				b.dispatch(ctx, handler, update)
			}()
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, handler telegram.UpdateHandler, update telegram.Update) {
	defer func() {
		if p := recover(); p != nil {
			b.log.Errorw("Update handler panicked", "update_id", update.UpdateID, "panic", p)
		}
	}()

	// in-flight updates finish even when polling is being shut down
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
	defer cancel()
	handler(hctx, update)
}

// Stop stops polling, waits for in-flight handlers and clears the webhook
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		cancel := b.cancelRun
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		b.api.StopReceivingUpdates()
		b.inflight.Wait()

		if err := b.DeleteWebhook(false); err != nil {
			b.log.Warnw("Failed to clear webhook on shutdown", "error", err)
		}
		b.log.Infow("Bot stopped")
	})
}

// DeleteWebhook removes the webhook so getUpdates does not conflict with it
func (b *Bot) DeleteWebhook(dropPendingUpdates bool) error {
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPendingUpdates})
	if err != nil {
		return errors.Wrap(err, "failed to delete webhook")
	}
	b.log.Debugw("Webhook deleted", "drop_pending", dropPendingUpdates)
	return nil
}

// SendMessage sends plain text
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := b.SendMessageWithOptions(ctx, chatID, text, telegram.MessageOptions{})
	return err
}

// SendMessageWithOptions sends text after waiting for the outbound rate limiter
func (b *Bot) SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts telegram.MessageOptions) (int, error) {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return 0, errors.Wrap(err, "rate limiter wait")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	msg.DisableWebPagePreview = opts.DisableWebPagePreview
	msg.DisableNotification = opts.DisableNotification

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, errors.Wrapf(err, "send message to chat %d", chatID)
	}
	return sent.MessageID, nil
}

func convertUpdate(tgUpdate tgbotapi.Update) telegram.Update {
	update := telegram.Update{UpdateID: tgUpdate.UpdateID}
	if tgUpdate.Message != nil {
		update.Message = convertMessage(tgUpdate.Message)
	}
	return update
}

func convertMessage(tgMsg *tgbotapi.Message) *telegram.Message {
	msg := &telegram.Message{
		MessageID: tgMsg.MessageID,
		Text:      tgMsg.Text,
		IsCommand: tgMsg.IsCommand(),
	}
	if tgMsg.From != nil {
		msg.From = &telegram.User{
			ID:        tgMsg.From.ID,
			FirstName: tgMsg.From.FirstName,
			LastName:  tgMsg.From.LastName,
			Username:  tgMsg.From.UserName,
			IsBot:     tgMsg.From.IsBot,
		}
	}
	if tgMsg.Chat != nil {
		msg.Chat = &telegram.Chat{
			ID:       tgMsg.Chat.ID,
			Type:     tgMsg.Chat.Type,
			Username: tgMsg.Chat.UserName,
		}
	}
	if msg.IsCommand {
		msg.Command = tgMsg.Command()
		msg.Arguments = tgMsg.CommandArguments()
	}
	return msg
}
