package app

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"
	"github.com/m3rciful/quizbot/core/telegram/middleware"
	"github.com/m3rciful/quizbot/core/telegram/state"
	"github.com/m3rciful/quizbot/internal/dialogue"
	"github.com/m3rciful/quizbot/internal/menu"

	tele "gopkg.in/telebot.v4"
)

func send(c tele.Context, r menu.Response) error {
	return tghelpers.SendHTML(c, r.Text, r.Markup)
}

func edit(c tele.Context, r menu.Response) error {
	return tghelpers.EditHTML(c, r.Text, r.Markup)
}

func (a *App) handleStart(c tele.Context) error {
	return send(c, menu.Welcome(a.cfg.Texts.Welcome))
}

func (a *App) handleAdmin(c tele.Context) error {
	return send(c, menu.AdminPanel())
}

// handleCancel serves both /cancel and the inline cancel button.
func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	had := a.dialogue.Reset(ctx, tghelpers.SenderID(c))
	resp := menu.Cancelled(had)
	if c.Callback() != nil {
		return edit(c, resp)
	}
	return send(c, resp)
}

// handleMainItem replaces the user's button message with the item response.
func (a *App) handleMainItem(item menu.Item) tele.HandlerFunc {
	return func(c tele.Context) error {
		resp, ok := menu.MainResponse(item, a.store.All())
		if !ok {
			return nil
		}
		tghelpers.DeleteBestEffort(c)
		return send(c, resp)
	}
}

func (a *App) beginEdit(st state.State) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if err := a.dialogue.Begin(ctx, tghelpers.SenderID(c), st); err != nil {
			return err
		}
		resp, _ := menu.Prompt(st, a.store.All())
		return edit(c, resp)
	}
}

func (a *App) handleView(c tele.Context) error {
	return edit(c, menu.SettingsDump(a.store.All()))
}

// handleBack closes the panel. A pending edit is dropped as well.
func (a *App) handleBack(c tele.Context) error {
	a.dialogue.Reset(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err := edit(c, menu.Response{Text: menu.Welcome(a.cfg.Texts.Welcome).Text}); err != nil {
		return err
	}
	return send(c, menu.BackToMain())
}

// handleDialogueInput consumes text for a pending edit.
func (a *App) handleDialogueInput(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	conv := tghelpers.SenderID(c)

	if !middleware.Allowed(c, a.admins) {
		a.dialogue.Reset(ctx, conv)
		logger.Warn(ctx, "dialogue", "dialogue.input",
			slog.String("status", "denied"),
		)
		return nil
	}

	step, err := a.dialogue.Consume(ctx, conv, c.Text())
	switch {
	case errors.Is(err, dialogue.ErrEmptyInput):
		return send(c, menu.EmptyInput(step.From, a.store.All()))
	case errors.Is(err, dialogue.ErrNotWaiting):
		return a.fallback.UnknownText()(c)
	case err != nil:
		return err
	}
	return send(c, menu.Confirmation(step))
}
