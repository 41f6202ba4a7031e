package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Exempt lets selected updates through without touching the user's window.
	Exempt func(tele.Context) bool
}

// userWindow remembers when each user was last let through.
type userWindow struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[int64]time.Time
	pruned   time.Time
}

// admit reports whether userID may pass at now and, if so, restarts its window.
func (w *userWindow) admit(userID int64, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.Sub(w.pruned) > time.Minute {
		for id, t := range w.last {
			if now.Sub(t) >= w.interval {
				delete(w.last, id)
			}
		}
		w.pruned = now
	}
	if t, ok := w.last[userID]; ok && now.Sub(t) < w.interval {
		return false
	}
	w.last[userID] = now
	return true
}

func rateLimitKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// RateLimitMiddleware enforces a minimum interval between updates from the
// same user. Web app payloads are never dropped.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	window := &userWindow{interval: opts.Interval, last: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			upd := c.Update()
			if _, skip := opts.Exclude[rateLimitKind(upd)]; skip {
				return next(c)
			}
			if upd.Message != nil && upd.Message.WebAppData != nil {
				return next(c)
			}
			if opts.Exempt != nil && opts.Exempt(c) {
				return next(c)
			}
			if window.admit(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", UpdateKind(c)),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
