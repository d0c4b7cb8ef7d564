package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	TelegramBot TelegramBot
	ESPNAPI     ESPNAPI
	Server      Server
	Storage     Storage
	Cache       Cache
	Scheduler   Scheduler
	Chat        Chat
	Projection  Projection
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

// Enabled reports whether a bot token is configured.
func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}

type ESPNAPI struct {
	Year     string `envconfig:"YEAR" required:"true"`
	LeagueID string `envconfig:"LEAGUE_ID" required:"true"`
	SWID     string `envconfig:"SWID"`
	ESPNS2   string `envconfig:"ESPN_S2"`
	BaseURL  string `envconfig:"ESPN_BASE_URL" default:"https://lm-api-reads.fantasy.espn.com/apis/v3/games/fba"`
}

type Server struct {
	Port        string   `envconfig:"PORT" default:"5000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

type Storage struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"file"`
	DataDir string `envconfig:"DATA_DIR" default:"data/analytics"`
	DBPath  string `envconfig:"DB_PATH" default:"data/analytics.db"`
}

type Cache struct {
	LeagueTTL time.Duration `envconfig:"LEAGUE_CACHE_TTL" default:"5m"`
	RedisURL  string        `envconfig:"REDIS_URL"`
}

type Scheduler struct {
	ExportCron string `envconfig:"EXPORT_CRON" default:"0 6 * * *"`
	Timezone   string `envconfig:"TIMEZONE" default:"America/Chicago"`
}

type Chat struct {
	APIKey string   `envconfig:"HUGGINGFACE_API_KEY"`
	URLs   []string `envconfig:"INFERENCE_URLS" default:"https://api-inference.huggingface.co/models/google/flan-t5-base,https://api-inference.huggingface.co/models/gpt2,https://api-inference.huggingface.co/models/microsoft/DialoGPT-small"`
}

type Projection struct {
	MaxCalendarDays int `envconfig:"PROJECTION_MAX_DAYS" default:"3"`
	ZeroLookback    int `envconfig:"ZERO_LOOKBACK_PERIODS" default:"3"`
	FetchWorkers    int `envconfig:"FETCH_WORKERS" default:"4"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite":
		c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	default:
		return fmt.Errorf("STORAGE_BACKEND must be file or sqlite, got %q", c.Storage.Backend)
	}
	if _, err := cron.ParseStandard(c.Scheduler.ExportCron); err != nil {
		return fmt.Errorf("invalid EXPORT_CRON %q: %w", c.Scheduler.ExportCron, err)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}
	if c.Projection.MaxCalendarDays < 1 {
		return fmt.Errorf("PROJECTION_MAX_DAYS must be at least 1")
	}
	if c.Projection.FetchWorkers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}
	if c.Projection.ZeroLookback < 0 {
		return fmt.Errorf("ZERO_LOOKBACK_PERIODS must not be negative")
	}
	return nil
}
