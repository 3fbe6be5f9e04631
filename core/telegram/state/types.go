package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State names a step of a conversation.
type State string

// StateIdle means no conversation is in progress.
const StateIdle State = "idle"

// Session is the tracked state of one user.
type Session struct {
	State     State
	UpdatedAt time.Time
}

// Manager tracks per-user conversation state and dispatches text to the
// handler registered for the user's current state.
type Manager interface {
	SetState(userID int64, st State)
	// GetState returns StateIdle for unknown users and never creates a session.
	GetState(userID int64) State
	InProgress(userID int64) bool
	// Clear forgets the user's session.
	Clear(userID int64)
	Sessions() int

	RegisterHandler(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error
}
