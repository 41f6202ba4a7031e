package middleware

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers the last few update ids so an update that passes
// through several wrapped routes is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	ring [256]int
	pos  int
	set  map[int]struct{}
}

func (s *seenUpdates) firstTime(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		s.set = make(map[int]struct{}, len(s.ring))
	}
	if _, ok := s.set[id]; ok {
		return false
	}
	delete(s.set, s.ring[s.pos])
	s.ring[s.pos] = id
	s.pos = (s.pos + 1) % len(s.ring)
	s.set[id] = struct{}{}
	return true
}

var receivedUpdates seenUpdates

// UpdateKind names the update for logs: command, callback, web_app, text or media.
func UpdateKind(c tele.Context) string {
	switch {
	case c.Callback() != nil:
		return "callback"
	case c.Message() == nil:
		return "other"
	case c.Message().WebAppData != nil:
		return "web_app"
	case strings.HasPrefix(c.Text(), "/"):
		return "command"
	case c.Text() != "":
		return "text"
	}
	return "media"
}

// LoggerMiddleware stores the update's logging context (rid plus ids) on the
// tele.Context and writes one sampled debug line per received update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var userID, chatID int64
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		if ch := c.Chat(); ch != nil {
			chatID = ch.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.TG)
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && receivedUpdates.firstTime(upd.ID) {
			logger.Debug(ctx, "tg", "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", UpdateKind(c)),
	}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}
	switch {
	case c.Callback() != nil:
		key, payload := callbacks.CallbackKey(c.Callback())
		attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 64)))
		}
	case c.Message() != nil && c.Message().WebAppData != nil:
		attrs = append(attrs, slog.Int("webapp_bytes", len(c.Message().WebAppData.Data)))
	case c.Text() != "":
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 128)))
	}
	return attrs
}
