package middleware

import (
	"log/slog"

	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// PendingRouter is the minimal interface required from an FSM manager.
type PendingRouter interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// DivertPending hands the update to the FSM instead of next while the sender
// has a pending prompt, so a command typed as an answer is consumed as one.
func DivertPending(mgr PendingRouter) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if mgr == nil || user == nil || !mgr.InProgress(user.ID) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.Debug(ctx, "tg", "fsm.divert",
				slog.Int64("user_id", user.ID),
				slog.String("payload", logger.SanitizeLimit(c.Text(), 64)),
			)
			return mgr.ManagerHandler(c)
		}
	}
}
