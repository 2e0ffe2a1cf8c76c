package telegram

import "strings"

// Update represents an incoming Telegram update (abstraction from tgbotapi)
type Update struct {
	UpdateID int `json:"update_id"`

	// Message is present if this is a regular message
	Message *Message `json:"message,omitempty"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Text      string `json:"text,omitempty"`
	IsCommand bool   `json:"-"`
	Command   string `json:"-"` // without the leading slash and @botname
	Arguments string `json:"-"`
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
}

// HasMessage checks if update contains a message
func (u *Update) HasMessage() bool {
	return u.Message != nil
}

// SenderUsername returns the sender's handle, or "" when the sender has none
func (m *Message) SenderUsername() string {
	if m == nil || m.From == nil {
		return ""
	}
	return m.From.Username
}

// ChatID returns the chat the message belongs to
func (m *Message) ChatID() int64 {
	if m == nil || m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

// ParseCommand fills IsCommand, Command and Arguments from Text.
// Accepted forms are "/command args" and "/command@botname args".
func (m *Message) ParseCommand() {
	if m == nil || m.Text == "" {
		return
	}

	if m.Text[0] != '/' {
		m.IsCommand = false
		return
	}
	m.IsCommand = true

	parts := strings.Fields(m.Text[1:])
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	if at := strings.IndexByte(command, '@'); at != -1 {
		command = command[:at]
	}
	m.Command = command
	m.Arguments = strings.Join(parts[1:], " ")
}

// NormalizeUsername strips a leading '@', trims whitespace and lowercases.
// Every username lookup and store goes through it.
func NormalizeUsername(username string) string {
	u := strings.TrimSpace(username)
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(strings.TrimSpace(u))
}
