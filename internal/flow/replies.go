package flow

import "github.com/m3rciful/yeabuddy/core/telegram/keyboard"

// Callback uniques used by the inline buttons.
const (
	CallbackAddExercise   = "addExercise"
	CallbackAddSet        = "addSet"
	CallbackFinish        = "finish"
	CallbackViewSession   = "viewSession"
	CallbackBackToHistory = "backToHistory"
)

const (
	msgGreeting      = "Yeah buddy! 💪 Light weight baby! What can I do for you?"
	msgSessionActive = "You already have an active training session! FOCUS! 💪\nUse /finish to end your current session."
	msgWebAppActive  = "You already have an active training session! FOCUS! 💪\nFinish your current session first."
	msgStarted       = "LIGHT WEIGHT BABY! 🏋️‍♂️ Training session started!\n\nUse the buttons below to control your workout!\n\nLet's make these weights fly! YEAH BUDDY! 💪"
	msgNoSession     = "No active training session! Start one with /pumpit first! 💪"
	msgAskExercise   = "Enter exercise name:"
	msgAskSet        = "Enter weight and reps (e.g., \"225 12\"):"
	msgEmptyName     = "Exercise name can't be empty, bro! Tap Add Exercise and try again. 💪"
	msgExerciseFirst = "Add an exercise first! 💪"
	msgInvalidSet    = "Invalid format! Please use format: \"weight reps\"\nExample: \"225 12\""
	msgRetrySet      = "\n\nSend the set again or /cancel."
	msgCancelled     = "No worries bro, cancelled. 💪"
	msgSaveFailed    = "\n\n⚠️ Could not save to history."
	msgFinishButton  = "YEAH BUDDY! 🏋️‍♂️"
	msgNoHistory     = "Workout history is not enabled on this bot. 💪"
	msgHistoryFailed = "Sorry bro! 😅 Couldn't load your history. Try again!"
	msgSessionFailed = "Sorry bro! 😅 Couldn't load that session. Try again!"
	msgNoSuchSession = "Session not found! Check /history for valid numbers. 💪"
	msgWebAppFailed  = "Failed to save workout data. Please try again! 💪"
	msgAppOffline    = "The mini app is not configured yet. Use /pumpit to log your workout! 💪"
	msgApp           = "🚀 Ready to pump it with our Mini App?\n\nTrack your workouts with a richer experience!\nYEAH BUDDY! 💪"
	msgWorkoutApp    = "YEAH BUDDY! 🏋️‍♂️ New workout session started!\n\nReady to pump some iron? Open the Workout Logger to track your sets!\n\nLIGHT WEIGHT BABY! 💪"
	msgExerciseAdded = "YEAH BUDDY! Starting %s! 🏋️‍♂️\nUse the buttons below to record your sets or add more exercises!"
	msgNoChat        = "Mistral is offline. I am dumb now, I can only record workouts..."
	msgVersion       = "Current app version is %s"
	msgActive        = "Active sessions: %d\nUsers waiting for input: %d"
)

// WebAppButton opens a Telegram mini app.
type WebAppButton struct {
	Text string
	URL  string
}

// Reply is what the transport should send back to the user.
type Reply struct {
	Text   string
	Inline [][]keyboard.InlineBtn
	WebApp *WebAppButton
	// Keyboard is a one-time reply keyboard, one inner slice per row.
	Keyboard [][]string
}

func text(s string) Reply { return Reply{Text: s} }

func btn(label, unique string) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: label, Unique: unique}
}

func startedButtons() [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{
		{btn("Add Exercise 🎯", CallbackAddExercise)},
		{btn("Finish Workout 🏁", CallbackFinish)},
	}
}

func exerciseButtons() [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{
		{btn("Record Set 💪", CallbackAddSet)},
		{btn("Add Another Exercise 🎯", CallbackAddExercise)},
		{btn("Finish Workout 🏁", CallbackFinish)},
	}
}

func setButtons() [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{
		{btn("Record Another Set 💪", CallbackAddSet)},
		{btn("Add New Exercise 🎯", CallbackAddExercise)},
		{btn("Finish Workout 🏁", CallbackFinish)},
	}
}

func addExerciseButton() [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{{btn("Add Exercise 🎯", CallbackAddExercise)}}
}
