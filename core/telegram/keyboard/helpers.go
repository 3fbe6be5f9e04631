// Package keyboard builds the reply and inline markups used by the menus.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes an inline button: a callback button bound to Unique
// (with optional Data payload), or a link button when URL is set.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

const defaultCancelButtonText = "❌ Cancel"

func (b InlineBtn) btn(m *tele.ReplyMarkup) tele.Btn {
	if b.URL != "" {
		return m.URL(b.Text, b.URL)
	}
	if b.Data == "" {
		return m.Data(b.Text, b.Unique)
	}
	return m.Data(b.Text, b.Unique, b.Data)
}

// ReplyButtons builds a resizable reply keyboard, one row per argument.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	out := make([]tele.Row, len(rows))
	for i, labels := range rows {
		for _, l := range labels {
			out[i] = append(out[i], m.Text(l))
		}
	}
	m.Reply(out...)
	return m
}

// InlineButtonsRows builds an inline keyboard from rows of buttons.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	out := make([]tele.Row, len(rows))
	for i, row := range rows {
		for _, b := range row {
			out[i] = append(out[i], b.btn(m))
		}
	}
	m.Inline(out...)
	return m
}

// InlineButtons stacks buttons vertically, one per row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineButtonsRows(rows...)
}

// LinkButton returns an inline keyboard holding a single URL button.
func LinkButton(text, url string) *tele.ReplyMarkup {
	return InlineButtonsRows([]InlineBtn{{Text: text, URL: url}})
}

// CancelButton returns a cancel button bound to unique. Optional arguments
// override the payload and then the label.
func CancelButton(unique string, options ...string) InlineBtn {
	b := InlineBtn{Text: defaultCancelButtonText, Unique: unique}
	if len(options) > 0 {
		b.Data = options[0]
	}
	if len(options) > 1 && options[1] != "" {
		b.Text = options[1]
	}
	return b
}
