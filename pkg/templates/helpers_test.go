package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no special characters",
			input:    "Велосипед",
			expected: "Велосипед",
		},
		{
			name:     "tags",
			input:    "<b>bold</b>",
			expected: "&lt;b&gt;bold&lt;/b&gt;",
		},
		{
			name:     "ampersand first",
			input:    "Tom & Jerry &lt;",
			expected: "Tom &amp; Jerry &amp;lt;",
		},
		{
			name:     "quotes",
			input:    `say "hi"`,
			expected: "say &quot;hi&quot;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeHTML(tt.input))
		})
	}
}

func TestSafeHTML(t *testing.T) {
	assert.Equal(t, "a&lt;b", SafeHTML("a\xff<b"))
	assert.Equal(t, "", SafeHTML(""))
}
