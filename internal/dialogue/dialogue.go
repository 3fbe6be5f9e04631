// Package dialogue drives the admin edit conversation: a button press puts a
// conversation into an Awaiting state and the next text message fills the
// matching settings field.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/core/telegram/state"
	"github.com/m3rciful/quizbot/internal/settings"
)

var (
	// ErrEmptyInput is returned for blank input; state and settings are untouched.
	ErrEmptyInput = errors.New("dialogue: empty input")
	// ErrNotWaiting is returned when input arrives for an idle conversation.
	ErrNotWaiting = errors.New("dialogue: no pending field")
	// ErrUnknownState is returned by Begin for states outside the edit table.
	ErrUnknownState = errors.New("dialogue: unknown state")
)

// Conversation states. Idle is shared with the core FSM manager.
const (
	Idle                       = state.StateIdle
	AwaitingCard               = state.State("awaiting_card")
	AwaitingGameLink           = state.State("awaiting_game_link")
	AwaitingCalendarLink       = state.State("awaiting_calendar_link")
	AwaitingChatLink           = state.State("awaiting_chat_link")
	AwaitingModeratorLink      = state.State("awaiting_moderator_link")
	AwaitingCharityLink        = state.State("awaiting_charity_link")
	AwaitingCharityDescription = state.State("awaiting_charity_description")
)

type transition struct {
	field settings.Field
	next  state.State
}

var table = map[state.State]transition{
	AwaitingCard:               {settings.PaymentCard, Idle},
	AwaitingGameLink:           {settings.NextGameLink, Idle},
	AwaitingCalendarLink:       {settings.CalendarLink, Idle},
	AwaitingChatLink:           {settings.GeneralChatLink, Idle},
	AwaitingModeratorLink:      {settings.ModeratorLink, Idle},
	AwaitingCharityLink:        {settings.CharityLink, AwaitingCharityDescription},
	AwaitingCharityDescription: {settings.CharityDescription, Idle},
}

// AwaitingStates lists every non-idle state in admin menu order.
var AwaitingStates = []state.State{
	AwaitingCard,
	AwaitingGameLink,
	AwaitingCalendarLink,
	AwaitingChatLink,
	AwaitingModeratorLink,
	AwaitingCharityLink,
	AwaitingCharityDescription,
}

// FieldFor returns the settings field captured in st.
func FieldFor(st state.State) (settings.Field, bool) {
	tr, ok := table[st]
	return tr.field, ok
}

// NextState returns the state that follows a successful input in st.
func NextState(st state.State) (state.State, bool) {
	tr, ok := table[st]
	return tr.next, ok
}

// Step describes one applied input.
type Step struct {
	From  state.State
	Field settings.Field
	Value string
	Next  state.State
}

// Done reports whether the conversation returned to Idle.
func (s Step) Done() bool { return s.Next == Idle }

// Controller owns the conversation -> state mapping and applies input to the store.
type Controller struct {
	fsm   state.Manager
	store *settings.Store
	// mu serialises read-modify-write sequences on the FSM.
	mu sync.Mutex
}

// NewController wires a controller to the FSM manager and the settings store.
func NewController(fsm state.Manager, store *settings.Store) *Controller {
	return &Controller{fsm: fsm, store: store}
}

// Begin moves conv into st, replacing any pending state.
func (c *Controller) Begin(ctx context.Context, conv int64, st state.State) error {
	if _, ok := table[st]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, st)
	}
	c.mu.Lock()
	prev := c.fsm.GetState(conv)
	c.fsm.SetState(conv, st)
	c.mu.Unlock()

	logger.LogEvent(ctx, logger.Dialogue, slog.LevelInfo, "dialogue.begin",
		slog.String("status", "ok"),
		slog.String("state", string(prev)),
		slog.String("next_state", string(st)),
	)
	return nil
}

// Consume applies text to the field awaited by conv and advances the state.
// Input is trimmed; blank input yields ErrEmptyInput and changes nothing.
func (c *Controller) Consume(ctx context.Context, conv int64, text string) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.fsm.GetState(conv)
	tr, ok := table[cur]
	if !ok {
		return Step{From: cur, Next: cur}, ErrNotWaiting
	}

	value := strings.TrimSpace(text)
	if value == "" {
		logger.LogEvent(ctx, logger.Dialogue, slog.LevelInfo, "dialogue.input",
			slog.String("status", "skip"),
			slog.String("state", string(cur)),
			slog.String("reason", "empty"),
		)
		return Step{From: cur, Field: tr.field, Next: cur}, ErrEmptyInput
	}

	if err := c.store.Set(ctx, tr.field, value); err != nil {
		return Step{From: cur, Field: tr.field, Next: cur}, fmt.Errorf("dialogue: store %s: %w", tr.field, err)
	}
	if tr.next == Idle {
		c.fsm.Clear(conv)
	} else {
		c.fsm.SetState(conv, tr.next)
	}

	logger.LogEvent(ctx, logger.Dialogue, slog.LevelInfo, "dialogue.input",
		slog.String("status", "ok"),
		slog.String("state", string(cur)),
		slog.String("next_state", string(tr.next)),
		slog.String("field", string(tr.field)),
	)
	return Step{From: cur, Field: tr.field, Value: value, Next: tr.next}, nil
}

// Current returns the state of conv; unknown conversations are Idle.
func (c *Controller) Current(conv int64) state.State {
	return c.fsm.GetState(conv)
}

// Pending reports whether conv is waiting for input.
func (c *Controller) Pending(conv int64) bool {
	_, ok := table[c.Current(conv)]
	return ok
}

// Reset drops any pending state for conv. It reports whether a state was cleared.
func (c *Controller) Reset(ctx context.Context, conv int64) bool {
	c.mu.Lock()
	prev := c.fsm.GetState(conv)
	if prev == Idle {
		c.mu.Unlock()
		return false
	}
	c.fsm.Clear(conv)
	c.mu.Unlock()

	logger.LogEvent(ctx, logger.Dialogue, slog.LevelInfo, "dialogue.reset",
		slog.String("status", "cancelled"),
		slog.String("state", string(prev)),
	)
	return true
}
