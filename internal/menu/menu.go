// Package menu renders keyboards and response texts. Every function is pure:
// it takes a settings snapshot and returns text plus markup.
package menu

import (
	"github.com/m3rciful/quizbot/core/telegram/format"
	"github.com/m3rciful/quizbot/core/telegram/keyboard"
	"github.com/m3rciful/quizbot/internal/settings"

	tele "gopkg.in/telebot.v4"
)

// Response is a rendered message.
type Response struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Item is a main menu entry.
type Item struct {
	Key   string
	Label string
}

// Main menu entries in keyboard order.
var (
	BookQuiz    = Item{Key: "book_quiz", Label: "🎯 Забронювати участь у квізі"}
	NextGame    = Item{Key: "next_game", Label: "🎮 Найближча гра"}
	Calendar    = Item{Key: "calendar", Label: "📅 Календар на місяць"}
	GeneralChat = Item{Key: "general_chat", Label: "💬 Загальний чат"}
	Moderator   = Item{Key: "moderator", Label: "❓ Питання до модератора"}
	Charity     = Item{Key: "charity", Label: "❤️ Благодійність"}
)

// MainItems lists the six main menu entries.
var MainItems = []Item{BookQuiz, NextGame, Calendar, GeneralChat, Moderator, Charity}

// MainKeyboard returns the reply keyboard with two entries per row.
func MainKeyboard() *tele.ReplyMarkup {
	rows := make([][]string, 0, len(MainItems)/2)
	for i := 0; i < len(MainItems); i += 2 {
		rows = append(rows, []string{MainItems[i].Label, MainItems[i+1].Label})
	}
	return keyboard.ReplyButtons(rows...)
}

// Welcome renders the /start greeting.
func Welcome(text string) Response {
	return Response{Text: format.EscapeHTML(text), Markup: MainKeyboard()}
}

// MainMenuHint is sent when a user types something the bot does not handle.
func MainMenuHint() Response {
	return Response{Text: "Оберіть пункт меню нижче 👇", Markup: MainKeyboard()}
}

// BackToMain is sent after leaving the admin panel.
func BackToMain() Response {
	return Response{Text: "Головне меню:", Markup: MainKeyboard()}
}

// MainResponse renders the reply for a main menu entry.
func MainResponse(item Item, s settings.Settings) (Response, bool) {
	switch item.Key {
	case BookQuiz.Key:
		return Response{
			Text: "💳 Для бронювання участі у квізі переведіть кошти на картку:\n\n" +
				format.Code(s.PaymentCard) +
				"\n\n💡 Після оплати зв'яжіться з модератором для підтвердження.",
			Markup: MainKeyboard(),
		}, true
	case NextGame.Key:
		return linkResponse("🎮 Інформація про найближчу гру доступна за посиланням нижче:", "🎮 Перейти до інформації", s.NextGameLink), true
	case Calendar.Key:
		return linkResponse("📅 Календар ігор на місяць:", "📅 Переглянути календар", s.CalendarLink), true
	case GeneralChat.Key:
		return linkResponse("💬 Приєднуйтесь до нашого загального чату:", "💬 Приєднатися до чату", s.GeneralChatLink), true
	case Moderator.Key:
		return linkResponse("❓ Якщо у вас є питання, зв'яжіться з модератором:", "❓ Написати модератору", s.ModeratorLink), true
	case Charity.Key:
		return linkResponse("❤️ "+format.EscapeHTML(s.CharityDescription), "❤️ Підтримати", s.CharityLink), true
	}
	return Response{}, false
}

// linkResponse attaches a URL button. Telegram rejects buttons with an empty
// URL, so an empty link is shown as plain text instead.
func linkResponse(text, button, link string) Response {
	if link == "" {
		return Response{Text: text, Markup: MainKeyboard()}
	}
	return Response{Text: text, Markup: keyboard.LinkButton(button, link)}
}
