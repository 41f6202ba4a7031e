package state

// Transition is a table key: the state a user is in and the event that happened.
type Transition struct {
	From  State
	Event Event
}

// Table maps transitions to the state the user moves into.
// Keys with From == AnyState apply when no exact key matches.
type Table map[Transition]State

// Next returns the destination for ev fired in from.
func (t Table) Next(from State, ev Event) (State, bool) {
	if to, ok := t[Transition{From: from, Event: ev}]; ok {
		return to, true
	}
	to, ok := t[Transition{From: AnyState, Event: ev}]
	return to, ok
}

// Fire applies ev to the user's current state and stores the result.
// Unknown transitions leave the state untouched and return false.
func Fire(m Manager, t Table, userID int64, ev Event) (State, bool) {
	from := m.GetState(userID)
	to, ok := t.Next(from, ev)
	if !ok {
		return from, false
	}
	if to == StateIdle {
		m.ClearState(userID)
	} else {
		m.SetState(userID, to)
	}
	return to, true
}
