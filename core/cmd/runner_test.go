package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	coretelegram "github.com/m3rciful/yeabuddy/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("YEABUDDY_CONFIG", "from-env.yaml")
	opts := Options{ConfigEnvVar: "YEABUDDY_CONFIG", DefaultConfigPath: "config.yaml"}
	if got := ResolveConfigPath(opts); got != "from-env.yaml" {
		t.Fatalf("env path = %q", got)
	}
	opts.ConfigPath = "flag.yaml"
	if got := ResolveConfigPath(opts); got != "flag.yaml" {
		t.Fatalf("explicit path = %q", got)
	}
	t.Setenv("YEABUDDY_CONFIG", "")
	opts.ConfigPath = ""
	if got := ResolveConfigPath(opts); got != "config.yaml" {
		t.Fatalf("default path = %q", got)
	}
}

func TestRunWiresHooksAndClosesApp(t *testing.T) {
	app := &fakeApp{}
	var started, stopped bool
	err := Run(Options{
		ConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			started = opts.OnStart(ctx, coretelegram.Runtime{}) == nil
			stopped = opts.OnStop(ctx, coretelegram.Runtime{}) == nil
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !started || !stopped {
		t.Fatalf("hooks started=%v stopped=%v, want both", started, stopped)
	}
	if !app.closed {
		t.Fatal("app was not closed")
	}
}

func TestRunReportsLoadFailure(t *testing.T) {
	err := Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, errors.New("bad yaml") },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
