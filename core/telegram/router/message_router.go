package router

import (
	"time"

	tg "github.com/m3rciful/yeabuddy/core/telegram"
	"github.com/m3rciful/yeabuddy/core/telegram/middleware"
	"github.com/m3rciful/yeabuddy/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM = middleware.PendingRouter

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText      tele.HandlerFunc
	UnsupportedMedia tele.HandlerFunc
	// WebAppData handles payloads posted by a mini app through sendData.
	WebAppData tele.HandlerFunc
}

// TextRoutes builds handlers for text, media and web app data routing.
// Media never answers a pending prompt; it always gets UnsupportedMedia.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logSkipped(c, "unknown_text", start)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnsupportedMedia != nil {
			return handleWithSummary(c, "unsupported_media", start, func() error {
				return opts.UnsupportedMedia(c)
			})
		}
		logSkipped(c, "unsupported_media", start)
		return nil
	}

	routes := []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
	for _, endpoint := range ui.MediaEndpoints {
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler)),
		})
	}
	if opts.WebAppData != nil {
		webAppHandler := func(c tele.Context) error {
			return handleWithSummary(c, "web_app_data", time.Now(), func() error {
				return opts.WebAppData(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: tele.OnWebApp,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(webAppHandler)),
		})
	}
	return routes
}
