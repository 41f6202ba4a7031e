package state

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// memoryManager keeps only users outside StateIdle, so the map size is the
// number of pending prompts.
type memoryManager struct {
	mu       sync.RWMutex
	users    map[int64]State
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager returns a Manager that lives in process memory.
func NewMemoryManager() Manager {
	return &memoryManager{
		users:    map[int64]State{},
		handlers: map[State]tele.HandlerFunc{},
	}
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch st {
	case StateIdle, "":
		delete(m.users, userID)
	default:
		m.users[userID] = st
	}
}

func (m *memoryManager) ClearState(userID int64) { m.SetState(userID, StateIdle) }

func (m *memoryManager) GetState(userID int64) State {
	st, _ := m.lookup(userID)
	return st
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Register sets the handler that consumes input while a user is in st.
// A nil handler is ignored.
func (m *memoryManager) Register(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.mu.Lock()
	m.handlers[st] = h
	m.mu.Unlock()
}

// lookup reads the user's state and its handler under one lock.
func (m *memoryManager) lookup(userID int64) (State, tele.HandlerFunc) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.users[userID]
	if !ok {
		st = StateIdle
	}
	return st, m.handlers[st]
}

// ManagerHandler passes c to the handler of the sender's current state.
// Updates without a sender or without a handler are dropped.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	st, h := m.lookup(sender.ID)
	logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.dispatch",
		slog.String("state", string(st)),
		slog.Bool("handled", h != nil),
	)
	if h == nil {
		return nil
	}
	return h(c)
}
