package middleware

import (
	"log/slog"

	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions configures AdminOnlyMiddleware. OnReject runs for everybody
// else; a nil OnReject drops the update silently.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only AdminID through. With no AdminID configured
// nobody passes.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if isAdmin(c, opts.AdminID) {
				return next(c)
			}
			logger.Info(tghelpers.BuildContext(c), "tg", "admin.rejected",
				slog.String("status", "skip"),
				slog.String("payload", logger.SanitizeLimit(c.Text(), 64)),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

func isAdmin(c tele.Context, adminID int64) bool {
	return adminID != 0 && c.Sender() != nil && c.Sender().ID == adminID
}
