package telegram

import (
	"context"
	"sync"

	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
	"dabwish/pkg/telegram"
	"dabwish/pkg/templates"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Opts   telegram.MessageOptions
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.SendMessageWithOptions(ctx, chatID, text, telegram.MessageOptions{})
	return err
}

func (s *fakeSender) SendMessageWithOptions(_ context.Context, chatID int64, text string, opts telegram.MessageOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return len(s.sent), nil
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func newTestMessenger(sender telegram.Sender) *Messenger {
	return NewMessenger(sender, templates.Get(), "http://localhost:3000/", logger.NewNop())
}

type failingRenderer struct{}

func (failingRenderer) Render(string, any) (string, error) { return "", errors.ErrInternal }
