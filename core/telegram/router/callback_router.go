package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/yeabuddy/core/logger"
	tg "github.com/m3rciful/yeabuddy/core/telegram"
	"github.com/m3rciful/yeabuddy/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"
	"github.com/m3rciful/yeabuddy/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound is used when the registry has no callback fallback of its own.
	NotFound tele.HandlerFunc
}

// CallbackRoute answers every button press right away so the client stops
// its spinner, then dispatches on the callback key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		key, payload := callbacks.CallbackKey(cb)
		extras := []slog.Attr{slog.String("cb_key", key)}
		if payload != "" {
			extras = append(extras, slog.String("payload", logger.SanitizeLimit(payload, 64)))
		}

		if err := c.Respond(); err != nil {
			logger.Debug(tghelpers.BuildContext(c), "tg", "callback.respond_failed", slog.String("err", err.Error()))
		}

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			h = reg.CallbackNotFound()
			if h == nil {
				h = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, "callback."+normalizeHandlerName(key), start, func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
