package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/quizbot/core/logger"
	tghelpers "github.com/m3rciful/quizbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Option customises a memory manager.
type Option func(*memoryManager)

// WithTTL forgets sessions not touched for ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *memoryManager) {
		m.ttl = max(ttl, 0)
	}
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *memoryManager) {
		if now != nil {
			m.now = now
		}
	}
}

type memoryManager struct {
	mu       sync.Mutex
	sessions map[int64]Session
	handlers sync.Map // State -> tele.HandlerFunc
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryManager returns a Manager keeping sessions in process memory.
func NewMemoryManager(opts ...Option) Manager {
	m := &memoryManager{sessions: make(map[int64]Session), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// lookup returns the live session, dropping it first when it expired.
// Caller holds mu.
func (m *memoryManager) lookup(userID int64) (Session, bool) {
	s, ok := m.sessions[userID]
	if ok && m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, userID)
		return Session{}, false
	}
	return s, ok
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = Session{State: st, UpdatedAt: m.now()}
}

func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.lookup(userID); ok {
		return s.State
	}
	return StateIdle
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryManager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memoryManager) RegisterHandler(st State, h tele.HandlerFunc) {
	if h != nil {
		m.handlers.Store(st, h)
	}
}

// ManagerHandler runs the handler registered for the sender's current state.
// Users in a state without a handler are ignored.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	current := m.GetState(tghelpers.SenderID(c))
	logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.String("state", string(current)),
	)
	h, ok := m.handlers.Load(current)
	if !ok {
		return nil
	}
	return h.(tele.HandlerFunc)(c)
}
