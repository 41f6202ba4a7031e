package app

import (
	"context"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/yeabuddy/core/telegram"
	"github.com/m3rciful/yeabuddy/core/telegram/callbacks"
	"github.com/m3rciful/yeabuddy/core/telegram/commands"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"
	"github.com/m3rciful/yeabuddy/core/telegram/keyboard"
	"github.com/m3rciful/yeabuddy/core/telegram/state"
	"github.com/m3rciful/yeabuddy/internal/flow"
)

type action func(ctx context.Context, owner int64) flow.Reply

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{Handler: a.handle(a.ctrl.Start), Description: "Say hi to your gym buddy"})
	reg.RegisterCommand("/pumpit", commands.Command{Handler: a.handle(a.ctrl.PumpIt), Description: "Start a training session"})
	reg.RegisterCommand("/finish", commands.Command{Handler: a.handle(a.ctrl.Finish), Description: "Finish the session and show the summary"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: a.handle(a.ctrl.Cancel), Description: "Cancel the current prompt"})
	reg.RegisterCommand("/history", commands.Command{Handler: a.handle(a.ctrl.History), Description: "Show your latest workouts"})
	reg.RegisterCommand("/app", commands.Command{Handler: a.handle(a.ctrl.App), Description: "Open the YeaBuddy mini app"})
	reg.RegisterCommand("/startworkout", commands.Command{Handler: a.handle(a.ctrl.StartWorkout), Description: "Start a workout in the mini app"})
	reg.RegisterCommand("/version", commands.Command{Handler: a.handle(a.ctrl.Version), Description: "Show the bot version"})
	if a.cfg.Telegram.AdminID != 0 {
		reg.RegisterCommand("/active", commands.Command{Handler: a.handle(a.ctrl.Active), Description: "Active sessions", AdminOnly: true, Hidden: true})
	}

	// registration errors are logged by the registry
	for key, h := range map[string]tele.HandlerFunc{
		flow.CallbackAddExercise:   a.handle(a.ctrl.AddExercisePressed),
		flow.CallbackAddSet:        a.handle(a.ctrl.AddSetPressed),
		flow.CallbackFinish:        a.handle(a.ctrl.Finish),
		flow.CallbackBackToHistory: a.handle(a.ctrl.History),
		flow.CallbackViewSession:   a.onViewSession,
	} {
		_ = reg.RegisterCallback(key, h)
	}

	reg.SetCallbackNotFound(fallbacks{}.UnknownCallback())
	reg.SetTextFallback(a.onText)
	a.modes.Register(flow.StateAwaitingExerciseName, a.onText)
	a.modes.Register(flow.StateAwaitingSetData, a.onText)
	return reg
}

func (a *App) handle(fn action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, owner, ok := tghelpers.Owner(c)
		if !ok {
			return nil
		}
		return send(c, fn(ctx, owner))
	}
}

// onText answers a pending prompt or, when idle, relays the message to the LLM.
func (a *App) onText(c tele.Context) error {
	ctx, owner, ok := tghelpers.Owner(c)
	if !ok {
		return nil
	}
	if a.ctrl.Mode(owner) == state.StateIdle && a.chat.Enabled() {
		tghelpers.Typing(c)
	}
	return send(c, a.ctrl.Text(ctx, owner, c.Text()))
}

func (a *App) onViewSession(c tele.Context) error {
	ctx, owner, ok := tghelpers.Owner(c)
	if !ok {
		return nil
	}
	n, _ := callbacks.PayloadIndex(c)
	return send(c, a.ctrl.SessionDetails(ctx, owner, n))
}

func (a *App) onWebAppData(c tele.Context) error {
	ctx, owner, ok := tghelpers.Owner(c)
	msg := c.Message()
	if !ok || msg == nil || msg.WebAppData == nil {
		return nil
	}
	return send(c, a.ctrl.WebAppData(ctx, owner, msg.WebAppData.Data))
}

func send(c tele.Context, r flow.Reply) error {
	if r.Text == "" {
		return nil
	}
	return tghelpers.SendWithMarkup(c, r.Text, markup(r))
}

// markup picks the keyboard for a reply: a mini app button, inline buttons or
// a one-time reply keyboard, in that order.
func markup(r flow.Reply) *tele.ReplyMarkup {
	switch {
	case r.WebApp != nil:
		return keyboard.WebApp(r.WebApp.Text, r.WebApp.URL)
	case len(r.Inline) > 0:
		return keyboard.Inline(r.Inline...)
	case len(r.Keyboard) > 0:
		return keyboard.OneTime(r.Keyboard...)
	}
	return nil
}

func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Easy, bro! One rep at a time. 💪"})
	}
	return nil
}
