package middleware

import (
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetricsMiddleware resets the reply counters that the handler
// summary reads back through GetCounters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetReplies(c)
		return next(c)
	}
}

// GetCounters returns the number of replies queued while handling the
// update and whether one of them had a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	return tghelpers.Replies(c)
}
