package format

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes text for Telegram's HTML parse mode.
// Telegram only requires &, < and > to be escaped; quotes are left intact.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Code wraps text in a <code> entity, escaping its content.
func Code(text string) string {
	return "<code>" + EscapeHTML(text) + "</code>"
}
