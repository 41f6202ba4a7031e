package app

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
	coredatabase "github.com/m3rciful/yeabuddy/core/database"
	"github.com/m3rciful/yeabuddy/internal/gymbro"
	"github.com/m3rciful/yeabuddy/internal/history"
)

// Chat history backends.
const (
	ChatHistoryMemory = "memory"
	ChatHistoryRedis  = "redis"
)

// LLMConfig points the gymbro persona at an OpenAI compatible endpoint.
// An empty APIKey runs the bot offline.
type LLMConfig struct {
	APIKey     string `yaml:"api_key" envconfig:"MISTRAL_API_KEY"`
	BaseURL    string `yaml:"base_url" envconfig:"LLM_BASE_URL" validate:"omitempty,url"`
	Model      string `yaml:"model" envconfig:"LLM_MODEL"`
	SafePrompt bool   `yaml:"safe_prompt" envconfig:"LLM_SAFE_PROMPT"`
}

// ChatHistoryConfig selects where LLM turns are remembered.
type ChatHistoryConfig struct {
	Backend  string        `yaml:"backend" envconfig:"CHAT_HISTORY_BACKEND" validate:"oneof=memory redis"`
	RedisURL string        `yaml:"redis_url" envconfig:"REDIS_URL" validate:"required_if=Backend redis"`
	Size     int           `yaml:"size" envconfig:"CHAT_HISTORY_SIZE" validate:"gte=2,lte=100"`
	TTL      time.Duration `yaml:"ttl" envconfig:"CHAT_HISTORY_TTL" validate:"gte=0"`
}

// StorageConfig selects the workout history backend.
type StorageConfig struct {
	Backend         string `yaml:"backend" envconfig:"STORAGE_BACKEND" validate:"oneof=none memory postgres mongo bolt"`
	MongoURI        string `yaml:"mongo_uri" envconfig:"COSMOS_CONNECTION_STRING" validate:"required_if=Backend mongo"`
	MongoDatabase   string `yaml:"mongo_database" envconfig:"COSMOS_DATABASE_ID"`
	MongoCollection string `yaml:"mongo_collection" envconfig:"COSMOS_WORKOUTS_CONTAINER_ID"`
	BoltPath        string `yaml:"bolt_path" envconfig:"BOLT_PATH" validate:"required_if=Backend bolt"`
}

// BotConfig holds conversation behaviour.
type BotConfig struct {
	WebAppURL       string `yaml:"webapp_url" envconfig:"WEBAPP_URL" validate:"omitempty,url"`
	WeightUnit      string `yaml:"weight_unit" envconfig:"WEIGHT_UNIT" validate:"oneof=kg lbs"`
	RetryInvalidSet bool   `yaml:"retry_on_invalid_set" envconfig:"RETRY_ON_INVALID_SET"`
	HistoryLimit    int    `yaml:"history_limit" envconfig:"HISTORY_LIMIT" validate:"gte=1,lte=50"`
	Timezone        string `yaml:"timezone" envconfig:"TZ_NAME"`
}

// Config is the full bot configuration: the reusable core plus YeaBuddy sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database    coredatabase.Config `yaml:"database"`
	LLM         LLMConfig           `yaml:"llm"`
	ChatHistory ChatHistoryConfig   `yaml:"chat_history"`
	Storage     StorageConfig       `yaml:"storage"`
	Bot         BotConfig           `yaml:"bot"`
}

// CoreConfig exposes the embedded core section to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path (optional) and the environment, applies defaults and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, oops.In("config").Wrap(err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills defaults and validates every section.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return oops.In("config").Code("config_invalid").Wrap(err)
	}

	c.ChatHistory.Backend = lowerOr(c.ChatHistory.Backend, ChatHistoryMemory)
	if c.ChatHistory.Size == 0 {
		c.ChatHistory.Size = gymbro.DefaultHistorySize
	}

	backend := history.BackendNone
	if strings.TrimSpace(c.Storage.MongoURI) != "" {
		backend = history.BackendMongo
	}
	c.Storage.Backend = lowerOr(c.Storage.Backend, backend)
	if c.Storage.MongoDatabase == "" {
		c.Storage.MongoDatabase = history.DefaultMongoDatabase
	}
	if c.Storage.MongoCollection == "" {
		c.Storage.MongoCollection = history.DefaultMongoCollection
	}
	if c.Storage.Backend == history.BackendBolt && c.Storage.BoltPath == "" {
		c.Storage.BoltPath = "yeabuddy.db"
	}

	c.Bot.WeightUnit = lowerOr(c.Bot.WeightUnit, "kg")
	if c.Bot.WeightUnit == "lb" {
		c.Bot.WeightUnit = "lbs"
	}
	if c.Bot.HistoryLimit == 0 {
		c.Bot.HistoryLimit = history.DefaultLimit
	}
	c.Bot.WebAppURL = strings.TrimRight(strings.TrimSpace(c.Bot.WebAppURL), "/")

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return oops.In("config").Code("config_invalid").Wrapf(err, "failed to validate config")
	}

	if c.Storage.Backend == history.BackendPostgres &&
		strings.TrimSpace(c.Database.URL) == "" && strings.TrimSpace(c.Database.Host) == "" {
		return oops.In("config").Code("config_invalid").
			Errorf("storage.backend postgres needs database.url or database.host")
	}
	if _, err := c.Location(); err != nil {
		return oops.In("config").Code("config_invalid").Wrap(err)
	}
	return nil
}

// Location resolves bot.timezone; an empty value means UTC.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Bot.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("bot.timezone: %w", err)
	}
	return loc, nil
}

func lowerOr(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}
