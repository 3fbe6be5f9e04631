package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/quizbot/core/telegram"
	"github.com/m3rciful/quizbot/core/telegram/callbacks"
	"github.com/m3rciful/quizbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound handles keys missing from the registry when the registry has
	// no fallback of its own. It must answer the callback query itself.
	NotFound tele.HandlerFunc
}

// CallbackRoute serves every callback query through the registry. Known keys
// get an empty answer before their handler runs.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	serve := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		keyAttr := slog.String("cb_key", key)

		if h, ok := reg.GetCallback(key); ok && h != nil {
			_ = c.Respond()
			return handleWithSummary(c, name, start, func() error { return h(c) }, keyAttr)
		}

		notFound := slog.String("reason", "not_found")
		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		if fallback == nil {
			_ = c.Respond()
			logHandlerSummary(c, name, start, "skip", nil, keyAttr, notFound)
			return nil
		}
		return handleWithSummary(c, name, start, func() error { return fallback(c) }, keyAttr, notFound)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: middleware.RecoverMiddleware(serve)}
}
