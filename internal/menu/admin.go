package menu

import (
	"strings"

	"github.com/m3rciful/quizbot/core/telegram/format"
	"github.com/m3rciful/quizbot/core/telegram/keyboard"
	"github.com/m3rciful/quizbot/core/telegram/state"
	"github.com/m3rciful/quizbot/internal/dialogue"
	"github.com/m3rciful/quizbot/internal/settings"

	tele "gopkg.in/telebot.v4"
)

// Admin panel callback uniques.
const (
	AdminCard      = "admin_card"
	AdminGame      = "admin_game"
	AdminCalendar  = "admin_calendar"
	AdminChat      = "admin_chat"
	AdminModerator = "admin_moderator"
	AdminCharity   = "admin_charity"
	AdminView      = "admin_view"
	AdminBack      = "admin_back"
	AdminCancel    = "admin_cancel"
)

// AdminAction is one admin panel button. Edit actions carry the state they start.
type AdminAction struct {
	Unique string
	Label  string
	State  state.State
}

// AdminActions lists the eight panel buttons in display order.
var AdminActions = []AdminAction{
	{AdminCard, "💳 Змінити номер картки", dialogue.AwaitingCard},
	{AdminGame, "🎮 Змінити посилання на гру", dialogue.AwaitingGameLink},
	{AdminCalendar, "📅 Змінити календар", dialogue.AwaitingCalendarLink},
	{AdminChat, "💬 Змінити загальний чат", dialogue.AwaitingChatLink},
	{AdminModerator, "❓ Змінити модератора", dialogue.AwaitingModeratorLink},
	{AdminCharity, "❤️ Налаштувати благодійність", dialogue.AwaitingCharityLink},
	{AdminView, "📊 Переглянути налаштування", ""},
	{AdminBack, "🔙 Назад до головного меню", ""},
}

const cancelLabel = "❌ Скасувати"

// AdminKeyboard returns the inline admin panel, one button per row.
func AdminKeyboard() *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(AdminActions))
	for _, a := range AdminActions {
		btns = append(btns, keyboard.InlineBtn{Text: a.Label, Unique: a.Unique})
	}
	return keyboard.InlineButtons(btns)
}

func cancelKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{keyboard.CancelButton(AdminCancel, "", cancelLabel)})
}

// AdminPanel renders the /admin entry message.
func AdminPanel() Response {
	return Response{Text: "🔧 Адміністративна панель\n\nОберіть дію:", Markup: AdminKeyboard()}
}

// Denied is shown to users outside the allow-list.
func Denied() Response {
	return Response{Text: "❌ У вас немає доступу до адміністративної панелі."}
}

type fieldText struct {
	emoji   string
	current string
	ask     string
	updated string
}

var fieldTexts = map[settings.Field]fieldText{
	settings.PaymentCard:        {"💳", "Поточний номер картки", "Введіть новий номер картки:", "Номер картки оновлено"},
	settings.NextGameLink:       {"🎮", "Поточне посилання на гру", "Введіть нове посилання:", "Посилання на гру оновлено"},
	settings.CalendarLink:       {"📅", "Поточне посилання на календар", "Введіть нове посилання:", "Посилання на календар оновлено"},
	settings.GeneralChatLink:    {"💬", "Поточне посилання на чат", "Введіть нове посилання:", "Посилання на чат оновлено"},
	settings.ModeratorLink:      {"❓", "Поточне посилання на модератора", "Введіть нове посилання:", "Посилання на модератора оновлено"},
	settings.CharityLink:        {"❤️", "Поточне посилання на благодійність", "Введіть нове посилання:", "Посилання на благодійність оновлено"},
	settings.CharityDescription: {"📝", "Поточний опис благодійності", "Введіть опис благодійності:", "Опис благодійності оновлено"},
}

// fieldValue renders a stored value; the card number is shown as code.
func fieldValue(f settings.Field, v string) string {
	if f == settings.PaymentCard {
		return format.Code(v)
	}
	return format.EscapeHTML(v)
}

// Prompt renders the request for input in an Awaiting state.
func Prompt(st state.State, s settings.Settings) (Response, bool) {
	f, ok := dialogue.FieldFor(st)
	if !ok {
		return Response{}, false
	}
	t := fieldTexts[f]
	return Response{
		Text:   t.emoji + " " + t.current + ": " + fieldValue(f, s.Value(f)) + "\n\n" + t.ask,
		Markup: cancelKeyboard(),
	}, true
}

// EmptyInput re-prompts after blank input.
func EmptyInput(st state.State, s settings.Settings) Response {
	p, ok := Prompt(st, s)
	if !ok {
		return MainMenuHint()
	}
	p.Text = "⚠️ Значення не може бути порожнім.\n\n" + p.Text
	return p
}

// Confirmation renders the reply after a stored input. A step that leads to
// another Awaiting state asks for the next value instead of showing the panel.
func Confirmation(step dialogue.Step) Response {
	t := fieldTexts[step.Field]
	text := "✅ " + t.updated + ": " + fieldValue(step.Field, step.Value)
	if step.Done() {
		return Response{Text: text, Markup: AdminKeyboard()}
	}
	if f, ok := dialogue.FieldFor(step.Next); ok {
		text += "\n\nТепер " + lowerFirst(fieldTexts[f].ask)
	}
	return Response{Text: text, Markup: cancelKeyboard()}
}

// Cancelled confirms that a pending edit was dropped.
func Cancelled(hadPending bool) Response {
	if !hadPending {
		return Response{Text: "Немає активного редагування.", Markup: AdminKeyboard()}
	}
	return Response{Text: "❎ Редагування скасовано.", Markup: AdminKeyboard()}
}

// SettingsDump renders all seven fields.
func SettingsDump(s settings.Settings) Response {
	var b strings.Builder
	b.WriteString("📊 Поточні налаштування:\n\n")
	rows := []struct {
		label string
		field settings.Field
	}{
		{"💳 Номер картки", settings.PaymentCard},
		{"🎮 Наступна гра", settings.NextGameLink},
		{"📅 Календар", settings.CalendarLink},
		{"💬 Загальний чат", settings.GeneralChatLink},
		{"❓ Модератор", settings.ModeratorLink},
		{"❤️ Благодійність", settings.CharityLink},
		{"📝 Опис благодійності", settings.CharityDescription},
	}
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.label)
		b.WriteString(": ")
		b.WriteString(fieldValue(r.field, s.Value(r.field)))
	}
	return Response{Text: b.String(), Markup: AdminKeyboard()}
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToLower(string(r[0])) + string(r[1:])
}
