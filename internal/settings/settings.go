// Package settings holds the mutable bot settings edited from the admin panel.
// Values live in memory only and reset to defaults on restart.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/m3rciful/quizbot/core/logger"
)

// ErrUnknownField is returned when a field outside the closed set is addressed.
var ErrUnknownField = errors.New("settings: unknown field")

// Field identifies one of the seven editable settings.
type Field string

const (
	PaymentCard        Field = "payment_card"
	NextGameLink       Field = "next_game_link"
	CalendarLink       Field = "calendar_link"
	GeneralChatLink    Field = "general_chat_link"
	ModeratorLink      Field = "moderator_link"
	CharityLink        Field = "charity_link"
	CharityDescription Field = "charity_description"
)

// Fields lists every field in display order.
var Fields = []Field{
	PaymentCard,
	NextGameLink,
	CalendarLink,
	GeneralChatLink,
	ModeratorLink,
	CharityLink,
	CharityDescription,
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return slices.Contains(Fields, f)
}

// Settings is a snapshot of all editable values.
type Settings struct {
	PaymentCard        string
	NextGameLink       string
	CalendarLink       string
	GeneralChatLink    string
	ModeratorLink      string
	CharityLink        string
	CharityDescription string
}

// Defaults returns the values the bot starts with.
func Defaults() Settings {
	return Settings{
		PaymentCard:        "5375 4141 0123 4567",
		NextGameLink:       "https://t.me/pubquiz_kharkov",
		CalendarLink:       "https://pubquiz.me/calendar",
		GeneralChatLink:    "https://t.me/pubquiz_chat",
		ModeratorLink:      "https://t.me/pubquiz_moderator",
		CharityLink:        "https://send.monobank.ua/jar/4zaXBKwdSp",
		CharityDescription: "Сбор на генераторы для вч а4699",
	}
}

func (s *Settings) ptr(f Field) *string {
	switch f {
	case PaymentCard:
		return &s.PaymentCard
	case NextGameLink:
		return &s.NextGameLink
	case CalendarLink:
		return &s.CalendarLink
	case GeneralChatLink:
		return &s.GeneralChatLink
	case ModeratorLink:
		return &s.ModeratorLink
	case CharityLink:
		return &s.CharityLink
	case CharityDescription:
		return &s.CharityDescription
	}
	return nil
}

// Value returns the value of f, or "" for an unknown field.
func (s Settings) Value(f Field) string {
	if p := s.ptr(f); p != nil {
		return *p
	}
	return ""
}

// Map returns the snapshot keyed by field name.
func (s Settings) Map() map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		out[f] = s.Value(f)
	}
	return out
}

// Store is the process-wide settings instance. Safe for concurrent use;
// the last writer wins.
type Store struct {
	mu  sync.RWMutex
	cur Settings
}

// NewStore creates a store seeded with initial values.
func NewStore(initial Settings) *Store {
	return &Store{cur: initial}
}

// Get returns the current value of f.
func (s *Store) Get(f Field) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Value(f), nil
}

// Set replaces the value of f. Any string is accepted, including "".
func (s *Store) Set(ctx context.Context, f Field, value string) error {
	s.mu.Lock()
	p := s.cur.ptr(f)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = value
	s.mu.Unlock()

	logger.LogEvent(ctx, logger.Settings, slog.LevelInfo, "settings.updated",
		slog.String("status", "ok"),
		slog.String("field", string(f)),
		slog.Int("value_len", len(value)),
	)
	return nil
}

// All returns a snapshot of every field.
func (s *Store) All() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Apply sets every non-empty override. Used to seed the store from configuration.
// Unknown fields are rejected before anything is written.
func (s *Store) Apply(ctx context.Context, overrides map[Field]string) error {
	for f := range overrides {
		if !f.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	for _, f := range Fields {
		if v := overrides[f]; v != "" {
			if err := s.Set(ctx, f, v); err != nil {
				return err
			}
		}
	}
	return nil
}
