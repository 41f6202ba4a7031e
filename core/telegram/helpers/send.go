package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d. With nil they run inline.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// enqueue hands run to the dispatcher. A full or closed queue degrades to
// an inline call so the reply is not lost.
func enqueue(c tele.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends raw text (no parse mode) to the chat of the update.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var what []any
	keyboard := false
	if len(opts) > 0 && opts[0] != nil {
		what = append(what, opts[0])
		keyboard = opts[0].ReplyMarkup != nil
	}
	countReply(c, keyboard)
	return enqueue(c, "send.text", "sendMessage", func() error {
		return c.Send(text, what...)
	})
}

// SendWithMarkup sends plain text with an optional keyboard attached.
func SendWithMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup == nil {
		return SendText(c, text)
	}
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// Typing shows the "typing" chat action. Errors are logged and dropped.
func Typing(c tele.Context) {
	if err := c.Notify(tele.Typing); err != nil {
		logger.Debug(BuildContext(c), "tg.sender", "notify.fail",
			slog.String("action", string(tele.Typing)),
			slog.String("err", err.Error()),
		)
	}
}
