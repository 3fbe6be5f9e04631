package app

import (
	"github.com/m3rciful/quizbot/internal/menu"

	tele "gopkg.in/telebot.v4"
)

type fallbacks struct{}

func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return send(c, menu.MainMenuHint())
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Дія більше не підтримується"})
	}
}

func (fallbacks) Denied() tele.HandlerFunc {
	return func(c tele.Context) error {
		return send(c, menu.Denied())
	}
}
