package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	"github.com/m3rciful/yeabuddy/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions are the app hooks plugged into the global chain.
type MiddlewareOptions struct {
	// OnLimited replies to a throttled user.
	OnLimited tele.HandlerFunc
	// RateLimitExempt bypasses throttling, e.g. for answers to a pending prompt.
	RateLimitExempt func(tele.Context) bool
}

// DefaultMiddlewares is the global chain in bot.Use order: panic recovery,
// the per-user rate limit when rate_limit.interval_ms is set, update
// logging and reply metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, mo MiddlewareOptions) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if limiter, ok := rateLimit(cfg, mo); ok {
		chain = append(chain, limiter)
	}
	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimit(cfg *coreconfig.Config, mo MiddlewareOptions) (Middleware, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return Middleware{}, false
	}
	// kinds are lower-cased by config.Normalize
	exclude := map[string]struct{}{}
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}
	return Middleware{
		Name: "rate_limit",
		Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
			Exclude:   exclude,
			OnLimited: mo.OnLimited,
			Exempt:    mo.RateLimitExempt,
		}),
	}, true
}
