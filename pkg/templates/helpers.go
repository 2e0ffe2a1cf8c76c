package templates

import (
	"strings"
	"text/template"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// SafeHTML drops invalid UTF-8 and escapes the rest for HTML parse mode
func SafeHTML(text string) string {
	return EscapeHTML(strings.ToValidUTF8(text, ""))
}

// funcs are available to every template
var funcs = template.FuncMap{
	"escape": SafeHTML,
}
