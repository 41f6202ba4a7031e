package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// AnyState matches every state in a transition table.
	AnyState State = "*"
)

// Event names something that can move a user between states.
type Event string

// Manager stores per-user state and the handlers that consume pending input.
type Manager interface {
	GetState(userID int64) State
	SetState(userID int64, st State)
	ClearState(userID int64)
	InProgress(userID int64) bool
	ActiveCount() int

	// Register associates a state with the handler that consumes its input.
	Register(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error
}
