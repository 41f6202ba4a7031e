// Package state provides a lightweight per-user FSM for Telegram bots.
// Bots declare their states and a transition table; the manager stores the
// current state per user and dispatches pending input to the handler
// registered for that state.
package state
