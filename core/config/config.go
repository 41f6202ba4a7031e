package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Update sources for the Telegram run mode.
const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// Update kinds that rate_limit.exclude_updates may name.
const (
	UpdateCallback    = "callback"
	UpdateMessage     = "message"
	UpdateInlineQuery = "inline_query"
)

var excludableUpdates = []string{UpdateCallback, UpdateMessage, UpdateInlineQuery}

// TelegramConfig is the bot identity and the way updates arrive.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	// RunMode is webhook or longpoll; empty picks webhook when webhook.url is set.
	RunMode                string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	LongPollTimeoutSeconds int    `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig describes the public webhook. Telegram is given URL+Path.
type WebhookConfig struct {
	URL         string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen      string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port        int    `yaml:"port" envconfig:"PORT"`
	Path        string `yaml:"path" envconfig:"WEBHOOK_PATH"`
	SecretToken string `yaml:"secret_token" envconfig:"WEBHOOK_SECRET_TOKEN"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	ErrorsFile  string `yaml:"errors_file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	// AlertChatID receives error records through the bot token when set.
	AlertChatID string `yaml:"alert_chat_id" envconfig:"LOG_ALERT_CHAT_ID"`
	// Profile is "prod" unless set; "debug" and "dev" switch to console output.
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig throttles each user to one update per IntervalMS.
// ExcludeUpdates lists update kinds that are never throttled.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config is the part of the configuration the core packages read.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load decodes path and the environment into a Config and normalizes it.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if err := Decode(path, cfg); err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode fills dst from the YAML file at path and then from the environment.
// A blank path or a missing file leaves the environment as the only source.
func Decode(path string, dst any) error {
	if err := decodeFile(strings.TrimSpace(path), dst); err != nil {
		return err
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

func decodeFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// Normalize fills defaults in place and rejects inconsistent settings.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if cfg.Telegram.Token == "" {
		return errors.New("config: telegram token is required")
	}
	for _, step := range []func(*Config) error{normalizeRunMode, normalizeWebhook, normalizeRateLimit} {
		if err := step(cfg); err != nil {
			return err
		}
	}
	return nil
}

func normalizeRunMode(cfg *Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "":
		mode = RunModeLongpoll
		if strings.TrimSpace(cfg.Webhook.URL) != "" {
			mode = RunModeWebhook
		}
	case "polling":
		mode = RunModeLongpoll
	case RunModeLongpoll, RunModeWebhook:
	default:
		return fmt.Errorf("config: invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	if mode == RunModeLongpoll && cfg.Telegram.LongPollTimeoutSeconds < 0 {
		return errors.New("config: telegram.longpoll_timeout_seconds must be >= 0")
	}
	cfg.Telegram.RunMode = mode
	return nil
}

func normalizeWebhook(cfg *Config) error {
	wh := &cfg.Webhook
	wh.Path = "/" + strings.TrimPrefix(strings.TrimSpace(wh.Path), "/")
	if wh.Path == "/" {
		wh.Path = "/webhook"
	}
	if cfg.Telegram.RunMode != RunModeWebhook {
		return nil
	}
	if strings.TrimSpace(wh.URL) == "" {
		return errors.New("config: webhook.url is required in webhook mode")
	}
	if strings.TrimSpace(wh.Listen) == "" {
		wh.Listen = "0.0.0.0"
	}
	switch {
	case wh.Port == 0:
		wh.Port = 443
	case wh.Port < 0:
		return fmt.Errorf("config: webhook.port %d must be positive", wh.Port)
	}
	return nil
}

func normalizeRateLimit(cfg *Config) error {
	kinds := cfg.RateLimit.ExcludeUpdates
	for i, raw := range kinds {
		kind := strings.ToLower(strings.TrimSpace(raw))
		if kind != "" && !slices.Contains(excludableUpdates, kind) {
			return fmt.Errorf("config: invalid rate_limit.exclude_updates value %q; allowed: %s",
				raw, strings.Join(excludableUpdates, ", "))
		}
		kinds[i] = kind
	}
	return nil
}

// WebhookEndpoint is the public URL registered with Telegram, or "" when
// no webhook URL is configured.
func (c *Config) WebhookEndpoint() string {
	base := strings.TrimRight(strings.TrimSpace(c.Webhook.URL), "/")
	if base == "" {
		return ""
	}
	return base + c.Webhook.Path
}
