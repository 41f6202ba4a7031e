// Package flow turns chat input into workout store operations and replies.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/core/telegram/keyboard"
	"github.com/m3rciful/yeabuddy/core/telegram/state"
	"github.com/m3rciful/yeabuddy/internal/history"
	"github.com/m3rciful/yeabuddy/internal/workout"
)

// Chatter answers idle free text.
type Chatter interface {
	Reply(ctx context.Context, owner int64, text string) string
}

// Options tune controller behaviour.
type Options struct {
	// RetryInvalidSet keeps the user awaiting set data after a parse failure.
	RetryInvalidSet bool
	WebAppURL       string
	Version         string
	HistoryLimit    int
}

// Controller owns the per-user mode register and drives the workout store.
type Controller struct {
	store   *workout.Store
	modes   state.Manager
	table   state.Table
	format  workout.Formatter
	chat    Chatter
	history history.Store
	opts    Options
}

// New wires a Controller. hist may be nil when persistence is disabled.
func New(store *workout.Store, modes state.Manager, format workout.Formatter, chat Chatter, hist history.Store, opts Options) *Controller {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = history.DefaultLimit
	}
	return &Controller{
		store:   store,
		modes:   modes,
		table:   transitions(opts.RetryInvalidSet),
		format:  format,
		chat:    chat,
		history: hist,
		opts:    opts,
	}
}

// Mode returns the owner's current mode.
func (c *Controller) Mode(owner int64) state.State {
	return c.modes.GetState(owner)
}

func (c *Controller) fire(ctx context.Context, owner int64, ev state.Event) {
	from := c.modes.GetState(owner)
	to, ok := state.Fire(c.modes, c.table, owner, ev)
	if !ok {
		return
	}
	logger.Debug(ctx, logger.ComponentWorkout, "mode.changed",
		slog.Int64("user_id", owner),
		slog.String("state", string(from)),
		slog.String("next_state", string(to)),
	)
}

// Start greets the user.
func (c *Controller) Start(context.Context, int64) Reply {
	return text(msgGreeting)
}

// Version reports the running build.
func (c *Controller) Version(context.Context, int64) Reply {
	return text(fmt.Sprintf(msgVersion, c.opts.Version))
}

// PumpIt starts a chat-driven session.
func (c *Controller) PumpIt(ctx context.Context, owner int64) Reply {
	if !c.store.StartSession(owner) {
		return text(msgSessionActive)
	}
	logger.Info(ctx, logger.ComponentWorkout, "session.started", slog.Int64("user_id", owner))
	return Reply{Text: msgStarted, Inline: startedButtons()}
}

// App offers the mini app.
func (c *Controller) App(context.Context, int64) Reply {
	if c.opts.WebAppURL == "" {
		return text(msgAppOffline)
	}
	return Reply{Text: msgApp, WebApp: &WebAppButton{Text: "Open YeaBuddy Mini App 🚀", URL: c.opts.WebAppURL}}
}

// StartWorkout starts a session and opens the mini app's workout logger.
func (c *Controller) StartWorkout(ctx context.Context, owner int64) Reply {
	if c.opts.WebAppURL == "" {
		return text(msgAppOffline)
	}
	if !c.store.StartSession(owner) {
		return text(msgWebAppActive)
	}
	logger.Info(ctx, logger.ComponentWorkout, "session.started",
		slog.Int64("user_id", owner), slog.String("source", "webapp"))
	return Reply{
		Text:   msgWorkoutApp,
		WebApp: &WebAppButton{Text: "🏋️‍♂️ Open Workout Logger", URL: c.opts.WebAppURL + "#/workout"},
	}
}

// AddExercisePressed asks for an exercise name.
func (c *Controller) AddExercisePressed(ctx context.Context, owner int64) Reply {
	if !c.store.HasActiveSession(owner) {
		return text(msgNoSession)
	}
	c.fire(ctx, owner, EventAddExercise)
	return text(msgAskExercise)
}

// AddSetPressed asks for "weight reps".
func (c *Controller) AddSetPressed(ctx context.Context, owner int64) Reply {
	sess, ok := c.store.Session(owner)
	if !ok {
		return text(msgNoSession)
	}
	if len(sess.Exercises) == 0 {
		return Reply{Text: msgExerciseFirst, Inline: addExerciseButton()}
	}
	c.fire(ctx, owner, EventAddSet)
	return text(msgAskSet)
}

// Text routes a plain message by the owner's mode. Commands typed while a
// prompt is pending arrive here too and are treated as the answer.
func (c *Controller) Text(ctx context.Context, owner int64, msg string) Reply {
	switch c.modes.GetState(owner) {
	case StateAwaitingExerciseName:
		if isCancel(msg) {
			return c.Cancel(ctx, owner)
		}
		return c.AnswerExerciseName(ctx, owner, msg)
	case StateAwaitingSetData:
		if isCancel(msg) {
			return c.Cancel(ctx, owner)
		}
		return c.AnswerSetData(ctx, owner, msg)
	default:
		return c.Chat(ctx, owner, msg)
	}
}

// AnswerExerciseName consumes the pending exercise name.
func (c *Controller) AnswerExerciseName(ctx context.Context, owner int64, msg string) Reply {
	c.fire(ctx, owner, EventAnswered)
	name := strings.TrimSpace(msg)
	if name == "" {
		return text(msgEmptyName)
	}
	if !c.store.AddExercise(owner, name) {
		return text(msgNoSession)
	}
	logger.Info(ctx, logger.ComponentWorkout, "exercise.added",
		slog.Int64("user_id", owner), slog.String("exercise", name))
	return Reply{Text: fmt.Sprintf(msgExerciseAdded, name), Inline: exerciseButtons()}
}

// AnswerSetData consumes the pending "weight reps" message.
func (c *Controller) AnswerSetData(ctx context.Context, owner int64, msg string) Reply {
	set, err := workout.ParseSet(msg)
	if err != nil {
		c.fire(ctx, owner, EventInvalidSet)
		logger.Debug(ctx, logger.ComponentWorkout, "set.invalid",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
		if c.opts.RetryInvalidSet {
			return text(msgInvalidSet + msgRetrySet)
		}
		return text(msgInvalidSet)
	}
	c.fire(ctx, owner, EventAnswered)
	exercise, ok := c.store.AddSet(owner, set.Weight, set.Reps)
	if !ok {
		if !c.store.HasActiveSession(owner) {
			return text(msgNoSession)
		}
		return Reply{Text: msgExerciseFirst, Inline: addExerciseButton()}
	}
	logger.Info(ctx, logger.ComponentWorkout, "set.logged",
		slog.Int64("user_id", owner),
		slog.String("exercise", exercise.Name),
		slog.Float64("weight", set.Weight),
		slog.Int("reps", set.Reps),
		slog.Int("sets", len(exercise.Sets)),
	)
	return Reply{Text: c.format.SetSummary(exercise), Inline: setButtons()}
}

// Cancel drops any pending prompt.
func (c *Controller) Cancel(ctx context.Context, owner int64) Reply {
	c.fire(ctx, owner, EventCancel)
	return text(msgCancelled)
}

// Chat relays idle text to the LLM unchanged.
func (c *Controller) Chat(ctx context.Context, owner int64, msg string) Reply {
	if c.chat == nil {
		return text(msgNoChat)
	}
	return text(c.chat.Reply(ctx, owner, msg))
}

// Finish ends the session and shows its summary. A failed save is reported
// under the summary; the session is finished either way.
func (c *Controller) Finish(ctx context.Context, owner int64) Reply {
	sess, ok := c.store.FinishSession(owner)
	if !ok {
		return text(msgNoSession)
	}
	summary := c.format.SessionSummary(*sess)
	logger.Info(ctx, logger.ComponentWorkout, "session.finished",
		slog.Int64("user_id", owner),
		slog.Int("exercises", len(sess.Exercises)),
		slog.Int("sets", sess.TotalSets()),
	)
	if c.history != nil {
		id, err := c.history.Save(ctx, *sess)
		if err != nil {
			logger.Error(ctx, logger.ComponentHistory, "save.failed",
				slog.Int64("user_id", owner), slog.String("error", err.Error()))
			summary += msgSaveFailed
		} else {
			logger.Info(ctx, logger.ComponentHistory, "save.ok",
				slog.Int64("user_id", owner), slog.String("workout_id", id))
		}
	}
	return Reply{Text: summary, Keyboard: [][]string{{msgFinishButton}}}
}

// History lists the owner's latest saved workouts with buttons to open each.
func (c *Controller) History(ctx context.Context, owner int64) Reply {
	if c.history == nil {
		return text(msgNoHistory)
	}
	records, err := c.history.Recent(ctx, owner, c.opts.HistoryLimit)
	if err != nil {
		logger.Error(ctx, logger.ComponentHistory, "recent.failed",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
		return text(msgHistoryFailed)
	}
	total, err := c.history.Count(ctx, owner)
	if err != nil || total < len(records) {
		total = len(records)
	}
	sessions := make([]workout.Session, len(records))
	buttons := make([]keyboard.InlineBtn, len(records))
	for i, r := range records {
		sessions[i] = r.Session
		n := strconv.Itoa(i + 1)
		buttons[i] = keyboard.InlineBtn{Text: n, Unique: CallbackViewSession, Data: n}
	}
	return Reply{Text: c.format.HistoryList(sessions, total), Inline: keyboard.Grid(buttons, 5)}
}

// SessionDetails shows the n-th most recent workout, counting from 1.
func (c *Controller) SessionDetails(ctx context.Context, owner int64, n int) Reply {
	if c.history == nil {
		return text(msgNoHistory)
	}
	if n < 1 {
		return text(msgNoSuchSession)
	}
	records, err := c.history.Recent(ctx, owner, n)
	if err != nil {
		logger.Error(ctx, logger.ComponentHistory, "recent.failed",
			slog.Int64("user_id", owner), slog.String("error", err.Error()))
		return text(msgSessionFailed)
	}
	if n > len(records) {
		return text(msgNoSuchSession)
	}
	return Reply{
		Text:   c.format.SessionDetails(records[n-1].Session),
		Inline: [][]keyboard.InlineBtn{{btn("Back to History 📊", CallbackBackToHistory)}},
	}
}

// Active reports in-memory counters for the admin.
func (c *Controller) Active(context.Context, int64) Reply {
	return text(fmt.Sprintf(msgActive, c.store.ActiveCount(), c.modes.ActiveCount()))
}

func isCancel(msg string) bool {
	cmd := strings.ToLower(strings.TrimSpace(msg))
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd == "/cancel"
}
