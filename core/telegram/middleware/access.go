package middleware

import (
	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Authorizer decides whether a Telegram username may run admin handlers.
type Authorizer interface {
	Contains(username string) bool
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Authorizer Authorizer
	OnReject   tele.HandlerFunc
}

// Allowed reports whether the update author passes the allow-list.
// Users without a public username never pass.
func Allowed(c tele.Context, auth Authorizer) bool {
	if auth == nil {
		return false
	}
	name, ok := tghelpers.SenderUsername(c)
	return ok && auth.Contains(name)
}

// AdminOnlyMiddleware ensures that only allow-listed users can invoke downstream handlers.
// Rejected updates run OnReject instead and never reach next.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if Allowed(c, opts.Authorizer) {
				return next(c)
			}
			name, _ := tghelpers.SenderUsername(c)
			logger.Info(tghelpers.BuildContext(c), "tg", "access.denied",
				slog.String("status", "denied"),
				slog.String("username", logger.SanitizeLimit(name, 64)),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
