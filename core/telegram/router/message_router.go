package router

import (
	"time"

	tg "github.com/m3rciful/quizbot/core/telegram"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"
	"github.com/m3rciful/quizbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextButton binds an exact reply-keyboard label to a handler.
type TextButton struct {
	Name    string
	Label   string
	Handler tele.HandlerFunc
}

// TextRoutes builds the catch-all text route. Pending FSM conversations
// take priority over registry lookups and fallbacks.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if fsmMgr != nil && fsmMgr.InProgress(tghelpers.SenderID(c)) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(handler),
	}}
}

// ButtonRoutes binds reply-keyboard labels. Telegram delivers a button press
// as a plain text message, so the label itself is the endpoint.
func ButtonRoutes(buttons []TextButton) []tg.Route {
	routes := make([]tg.Route, 0, len(buttons))
	for _, b := range buttons {
		if b.Label == "" || b.Handler == nil {
			continue
		}
		name := "button." + normalizeHandlerName(b.Name)
		inner := b.Handler
		routes = append(routes, tg.Route{
			Endpoint: b.Label,
			Handler: middleware.RecoverMiddleware(func(c tele.Context) error {
				return handleWithSummary(c, name, time.Now(), func() error { return inner(c) })
			}),
		})
	}
	return routes
}
