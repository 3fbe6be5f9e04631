package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Level names as they appear in rendered lines.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// status and outcome values outside these sets are rewritten or dropped.
var (
	statusValues  = set("ok", "fail", "skip", "denied", "cancelled")
	outcomeValues = set("ok", "fail", "denied", "cancelled")
)

// keyOrder lists the keys rendered first, in this order; the rest follow sorted.
var keyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "cb_key", "outcome", "duration_ms",
	"messages", "kb",
	"state", "next_state", "field",
	"payload", "username",
	"mode", "listen", "public_url",
	"err", "err_code", "cause", "attempts",
}

func defaultOrder() []string {
	return append([]string(nil), keyOrder...)
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// levelName maps both slog level strings and config spellings onto the four names.
func levelName(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(raw)
}

func levelOf(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// enumValue lowercases v and reports whether it belongs to allowed.
func enumValue(v string, allowed map[string]struct{}) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	_, ok := allowed[v]
	return v, ok && v != ""
}

// Status maps an error onto the status field value.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Took returns the time since start rounded to milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to the nearest millisecond; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}
