package middleware

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers the last few update IDs so an update routed through
// more than one endpoint is logged once.
var seenUpdates = newUpdateRing(64)

type updateRing struct {
	mu   sync.Mutex
	ids  []int
	next int
}

func newUpdateRing(size int) *updateRing {
	return &updateRing{ids: make([]int, size)}
}

// mark records id and reports whether it was already present.
func (r *updateRing) mark(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.ids, id) {
		return true
	}
	r.ids[r.next] = id
	r.next = (r.next + 1) % len(r.ids)
	return false
}

// LoggerMiddleware starts the request context (rid, update/user/chat ids)
// and logs one sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.NewRequestContext(c)
		upd := c.Update()
		if upd.ID != 0 && logger.ShouldSampleDebug("update.received") && !seenUpdates.mark(upd.ID) {
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", receiptAttrs(c, upd)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
	}
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
