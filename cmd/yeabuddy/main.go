package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/m3rciful/yeabuddy/core/buildinfo"
	corecmd "github.com/m3rciful/yeabuddy/core/cmd"
	coredatabase "github.com/m3rciful/yeabuddy/core/database"
	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/internal/app"
)

const configEnvVar = "YEABUDDY_CONFIG"

func main() {
	// a missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the YAML config (environment variables override it)",
		EnvVars: []string{configEnvVar},
	}

	return &cli.App{
		Name:    "yeabuddy",
		Usage:   "Telegram gym buddy that logs workouts. LIGHT WEIGHT BABY!",
		Version: buildinfo.String(),
		Flags:   []cli.Flag{configFlag},
		Action:  runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the bot (default)",
				Flags:  []cli.Flag{configFlag},
				Action: runBot,
			},
			{
				Name:   "migrate",
				Usage:  "apply postgres migrations and exit",
				Flags:  []cli.Flag{configFlag},
				Action: migrate,
			},
		},
	}
}

func runBot(c *cli.Context) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        c.String("config"),
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(ctx, appCfg)
		},
	})
}

func migrate(c *cli.Context) error {
	path := corecmd.ResolveConfigPath(corecmd.Options{
		ConfigPath:        c.String("config"),
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: "config.yaml",
	})
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" && cfg.Database.Host == "" {
		return fmt.Errorf("migrate: set DATABASE_URL or database.host")
	}
	if err := logger.InitLogger(&cfg.Config); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return coredatabase.RunMigrations(ctx, cfg.Database)
}
