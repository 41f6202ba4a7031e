package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"
	tgsender "github.com/m3rciful/yeabuddy/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to any endpoint tele.Bot.Handle accepts.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// WebhookServer serves webhook updates for bot until ctx is done.
// The bot is built with Synchronous set, so handlers finish before
// ProcessUpdate returns and the HTTP status reflects the outcome.
type WebhookServer func(ctx context.Context, bot *tele.Bot, addr string) error

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options

	Middlewares []Middleware
	Routes      []Route

	// ServeWebhook replaces telebot's built-in webhook listener in webhook mode.
	ServeWebhook WebhookServer

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks get to see.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

func (rt Runtime) release() {
	rt.Dispatcher.Close()
	tghelpers.SetDispatcher(nil)
}

// RunTelegram builds the bot from opts and serves updates until ctx is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	ownServer := cfg.Telegram.RunMode == coreconfig.RunModeWebhook && opts.ServeWebhook != nil

	start := time.Now()
	bot, err := newBot(cfg, ownServer)
	if err != nil {
		return err
	}
	announceMode(ctx, bot, cfg, ownServer, time.Since(start))

	rt := Runtime{Bot: bot, Dispatcher: tgsender.NewDispatcher(opts.DispatcherOptions), Registry: opts.Registry}
	tghelpers.SetDispatcher(rt.Dispatcher)
	defer rt.release()

	wire(bot, opts)
	InitBotCommands(bot, opts.Registry)

	if ownServer {
		hook := &tele.Webhook{
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.WebhookEndpoint()},
			SecretToken: cfg.Webhook.SecretToken,
		}
		if err := bot.SetWebhook(hook); err != nil {
			return fmt.Errorf("telegram: set webhook: %w", err)
		}
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	var runErr error
	if ownServer {
		runErr = opts.ServeWebhook(ctx, bot, listenAddr(cfg))
	} else {
		runErr = poll(ctx, bot)
	}

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func newBot(cfg *coreconfig.Config, ownServer bool) (*tele.Bot, error) {
	settings := tele.Settings{
		Token:       cfg.Telegram.Token,
		Client:      BuildHTTPClient(pollTimeout(cfg)),
		Synchronous: ownServer,
		OnError:     logBotError,
	}
	if !ownServer {
		settings.Poller = BuildPoller(cfg)
	}
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	return bot, nil
}

func wire(bot *tele.Bot, opts RunOptions) {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
}

// announceMode logs the update source. Polling also drops a webhook left
// over from an earlier webhook deployment, which would block getUpdates.
func announceMode(ctx context.Context, bot *tele.Bot, cfg *coreconfig.Config, ownServer bool, took time.Duration) {
	attrs := []slog.Attr{slog.Duration("duration", logger.RoundMS(took))}
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "mode", append(attrs,
			slog.String("mode", "webhook"),
			slog.String("listen", listenAddr(cfg)),
			slog.String("public_url", cfg.WebhookEndpoint()),
			slog.Bool("own_server", ownServer),
		)...)
		return
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "mode", append(attrs,
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", int(pollTimeout(cfg)/time.Second)),
	)...)
	if err := bot.RemoveWebhook(false); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "delete_webhook", slog.String("err", err.Error()))
	}
}

// poll runs the long poller until ctx is done.
func poll(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	}
}

func logBotError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "bot.error", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
}
