package flow

import "github.com/m3rciful/yeabuddy/core/telegram/state"

// Modes a user can be in besides state.StateIdle.
const (
	StateAwaitingExerciseName state.State = "awaiting_exercise_name"
	StateAwaitingSetData      state.State = "awaiting_set_data"
)

// Events fired by the controller.
const (
	EventAddExercise state.Event = "add_exercise"
	EventAddSet      state.Event = "add_set"
	EventAnswered    state.Event = "answered"
	EventInvalidSet  state.Event = "invalid_set"
	EventCancel      state.Event = "cancel"
)

// transitions builds the mode table. retryInvalidSet keeps the user waiting
// for set data after a parse failure instead of dropping back to idle.
func transitions(retryInvalidSet bool) state.Table {
	onInvalid := state.StateIdle
	if retryInvalidSet {
		onInvalid = StateAwaitingSetData
	}
	return state.Table{
		{From: state.AnyState, Event: EventAddExercise}:         StateAwaitingExerciseName,
		{From: state.AnyState, Event: EventAddSet}:              StateAwaitingSetData,
		{From: StateAwaitingExerciseName, Event: EventAnswered}: state.StateIdle,
		{From: StateAwaitingSetData, Event: EventAnswered}:      state.StateIdle,
		{From: StateAwaitingSetData, Event: EventInvalidSet}:    onInvalid,
		{From: state.AnyState, Event: EventCancel}:              state.StateIdle,
	}
}
