package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	"github.com/m3rciful/yeabuddy/core/logger"
	coretelegram "github.com/m3rciful/yeabuddy/core/telegram"
)

// ConfigCarrier is an app config that embeds the core Config.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp builds the bot run options. Apps that also implement
// io.Closer are closed after the bot stops.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options wire a concrete app into Run. LoadConfig and Bootstrap are required.
type Options struct {
	// ConfigPath wins over ConfigEnvVar and DefaultConfigPath.
	ConfigPath        string
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error)

	// Test seams; nil means logger.Shutdown and coretelegram.RunTelegram.
	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

func (o Options) withDefaults() Options {
	if o.ShutdownLogger == nil {
		o.ShutdownLogger = logger.Shutdown
	}
	if o.RunTelegram == nil {
		o.RunTelegram = coretelegram.RunTelegram
	}
	return o
}

// Run loads the config, bootstraps the app and serves the bot until SIGINT
// or SIGTERM.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	opts = opts.withDefaults()

	path := ResolveConfigPath(opts)
	log.Printf("loading config: %s", displayPath(path))
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := opts.ShutdownLogger(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	bootedAt := time.Now()
	application, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer closeApp(application)

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	announceLifecycle(&runOpts, bootedAt)
	return opts.RunTelegram(ctx, runOpts)
}

// announceLifecycle logs "ready" after the app's OnStart succeeds and
// "shutdown" before its OnStop runs.
func announceLifecycle(opts *coretelegram.RunOptions, bootedAt time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, logger.ComponentApp, "ready",
			slog.Duration("startup_duration", logger.RoundMS(time.Since(bootedAt))),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, logger.ComponentApp, "shutdown")
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

func closeApp(application TelegramApp) {
	closer, ok := application.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn(context.Background(), logger.ComponentApp, "app.close", slog.String("err", err.Error()))
	}
}

// ResolveConfigPath picks the explicit path, then the env variable
// (CONFIG_PATH unless ConfigEnvVar is set), then the default. An empty
// result means the environment is the only configuration source.
func ResolveConfigPath(opts Options) string {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	for _, p := range []string{opts.ConfigPath, os.Getenv(env)} {
		if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return opts.DefaultConfigPath
}

func displayPath(p string) string {
	if p == "" {
		return "<env only>"
	}
	return p
}
