// Package app wires YeaBuddy: configuration, storage, the LLM persona and
// the Telegram handlers on top of the reusable core.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/yeabuddy/core/bootstrap"
	"github.com/m3rciful/yeabuddy/core/buildinfo"
	coredatabase "github.com/m3rciful/yeabuddy/core/database"
	"github.com/m3rciful/yeabuddy/core/logger"
	coretelegram "github.com/m3rciful/yeabuddy/core/telegram"
	"github.com/m3rciful/yeabuddy/core/telegram/router"
	"github.com/m3rciful/yeabuddy/core/telegram/state"
	"github.com/m3rciful/yeabuddy/internal/flow"
	"github.com/m3rciful/yeabuddy/internal/gymbro"
	"github.com/m3rciful/yeabuddy/internal/history"
	"github.com/m3rciful/yeabuddy/internal/server"
	"github.com/m3rciful/yeabuddy/internal/workout"
)

// App owns every long-lived collaborator of the bot.
type App struct {
	cfg *Config

	infra   *bootstrap.Result
	redis   *redis.Client
	history history.Store

	modes    state.Manager
	chat     *gymbro.Service
	ctrl     *flow.Controller
	registry *coretelegram.Registry
}

// Bootstrap initializes logging and storage and builds the controller.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}

	var dbCfg *coredatabase.Config
	if cfg.Storage.Backend == history.BackendPostgres {
		dbCfg = &cfg.Database
	}
	infra, err := bootstrap.Run(ctx, bootstrap.Options{Config: &cfg.Config, Database: dbCfg})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, infra: infra}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	hist, err := history.Open(ctx, history.Options{
		Backend:  cfg.Storage.Backend,
		BoltPath: cfg.Storage.BoltPath,
		Mongo: history.MongoOptions{
			URI:        cfg.Storage.MongoURI,
			Database:   cfg.Storage.MongoDatabase,
			Collection: cfg.Storage.MongoCollection,
		},
		DB: a.infra.DB,
	})
	if err != nil {
		return err
	}
	a.history = hist

	turns, err := a.chatHistory(ctx)
	if err != nil {
		return err
	}

	var completer gymbro.Completer
	if cfg.LLM.APIKey != "" {
		c := gymbro.NewOpenAICompleter(gymbro.ClientOptions{
			APIKey:     cfg.LLM.APIKey,
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.LLM.Model,
			SafePrompt: cfg.LLM.SafePrompt,
		})
		logger.Info(ctx, logger.ComponentLLM, "llm.enabled", slog.String("model", c.Model()))
		completer = c
	} else {
		logger.Warn(ctx, logger.ComponentLLM, "llm.offline")
	}
	a.chat = gymbro.NewService(completer, turns)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	format := workout.Formatter{Unit: workout.ParseUnit(cfg.Bot.WeightUnit), Now: time.Now, Location: loc}

	a.modes = state.NewMemoryManager()
	a.ctrl = flow.New(workout.NewStore(), a.modes, format, a.chat, a.history, flow.Options{
		RetryInvalidSet: cfg.Bot.RetryInvalidSet,
		WebAppURL:       cfg.Bot.WebAppURL,
		Version:         buildinfo.String(),
		HistoryLimit:    cfg.Bot.HistoryLimit,
	})
	a.registry = a.buildRegistry()
	return nil
}

func (a *App) chatHistory(ctx context.Context) (gymbro.HistoryStore, error) {
	ch := a.cfg.ChatHistory
	if ch.Backend != ChatHistoryRedis {
		return gymbro.NewMemoryHistory(ch.Size), nil
	}
	opt, err := redis.ParseURL(ch.RedisURL)
	if err != nil {
		return nil, oops.In("app").Code("redis_url").Wrapf(err, "parse REDIS_URL")
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.In("app").Code("redis_ping").Wrapf(err, "ping redis")
	}
	a.redis = client
	logger.Info(ctx, logger.ComponentLLM, "chat_history.redis", slog.String("addr", opt.Addr))
	return gymbro.NewRedisHistory(client, ch.Size, ch.TTL), nil
}

// TelegramRunOptions describes routes, middleware and the webhook server for the core runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	cfg := &a.cfg.Config
	fb := fallbacks{}

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       cfg.Telegram.AdminID,
		OnAdminReject: fb.UnknownText(),
		FSM:           a.modes,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{NotFound: fb.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(a.modes, a.registry, router.TextOptions{
		UnknownText:      fb.UnknownText(),
		UnsupportedMedia: fb.UnsupportedMedia(),
		WebAppData:       a.onWebAppData,
	})...)

	return coretelegram.RunOptions{
		Config:   cfg,
		Registry: a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, coretelegram.MiddlewareOptions{
			OnLimited:       onLimited,
			RateLimitExempt: a.answeringPrompt,
		}),
		Routes:       routes,
		ServeWebhook: a.serveWebhook,
	}, nil
}

func (a *App) serveWebhook(ctx context.Context, bot *tele.Bot, addr string) error {
	srv := server.New(bot, server.Options{
		WebhookPath: a.cfg.Webhook.Path,
		SecretToken: a.cfg.Webhook.SecretToken,
	})
	return srv.Run(ctx, addr)
}

// answeringPrompt keeps a quick reply to "Enter exercise name:" from being throttled.
func (a *App) answeringPrompt(c tele.Context) bool {
	return c.Sender() != nil && a.modes.InProgress(c.Sender().ID)
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.infra.Close())
	return errors.Join(errs...)
}
