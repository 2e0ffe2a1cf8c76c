package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_ParseCommand(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantIsCommand bool
		wantCommand   string
		wantArgs      string
	}{
		{
			name:          "simple command",
			text:          "/start",
			wantIsCommand: true,
			wantCommand:   "start",
		},
		{
			name:          "start with payload",
			text:          "/start verify_42",
			wantIsCommand: true,
			wantCommand:   "start",
			wantArgs:      "verify_42",
		},
		{
			name:          "command with @botname",
			text:          "/start@DabWishBot",
			wantIsCommand: true,
			wantCommand:   "start",
		},
		{
			name:          "command with @botname and args",
			text:          "/help@DabWishBot  wishes   list",
			wantIsCommand: true,
			wantCommand:   "help",
			wantArgs:      "wishes list",
		},
		{
			name: "regular text",
			text: "Hello world",
		},
		{
			name:          "bare slash",
			text:          "/",
			wantIsCommand: true,
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Text: tt.text}
			msg.ParseCommand()

			assert.Equal(t, tt.wantIsCommand, msg.IsCommand)
			assert.Equal(t, tt.wantCommand, msg.Command)
			assert.Equal(t, tt.wantArgs, msg.Arguments)
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("alice"))
	assert.Equal(t, "alice", NormalizeUsername("@alice"))
	assert.Equal(t, "alice", NormalizeUsername("  @Alice "))
	assert.Equal(t, "alice", NormalizeUsername("ALICE"))
	assert.Equal(t, "", NormalizeUsername("@"))
	assert.Equal(t, "", NormalizeUsername(""))
}

func TestNormalizeUsernameEquivalence(t *testing.T) {
	for _, u := range []string{"alice", "Bob_99", "x", "Mixed_Case_Name", "  spaced  "} {
		want := NormalizeUsername(u)
		assert.Equal(t, want, NormalizeUsername("@"+u), u)
		assert.Equal(t, want, NormalizeUsername(strings.ToUpper(u)), u)
		assert.Equal(t, want, NormalizeUsername(want), "normalize must be idempotent for %q", u)
	}
}

func TestMessageAccessors(t *testing.T) {
	var nilMsg *Message
	assert.Equal(t, "", nilMsg.SenderUsername())
	assert.Equal(t, int64(0), nilMsg.ChatID())

	m := &Message{From: &User{Username: "Alice"}, Chat: &Chat{ID: 555}}
	assert.Equal(t, "Alice", m.SenderUsername())
	assert.Equal(t, int64(555), m.ChatID())
}
