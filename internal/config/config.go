package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	Port        string `env:"PORT"        envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL"   envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	LLMProvider    string        `env:"LLM_PROVIDER"    envDefault:"ollama"`
	LLMBaseURL     string        `env:"LLM_BASE_URL"    envDefault:"http://localhost:11434"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	ModelName      string        `env:"MODEL_NAME"      envDefault:"local-model"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	TurnTimeout    time.Duration `env:"TURN_TIMEOUT"    envDefault:"60s"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS"    envDefault:"20"`
	RetryBackoff   time.Duration `env:"RETRY_BACKOFF"   envDefault:"30s"`

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"file"`
	SaveDir        string        `env:"SAVE_DIR"        envDefault:"saves"`
	RedisURL       string        `env:"REDIS_URL"       envDefault:"redis://localhost:6379"`
	SaveTTL        time.Duration `env:"SAVE_TTL"        envDefault:"0s"`
	SQLitePath     string        `env:"SQLITE_PATH"     envDefault:"saves/worlds.db"`

	LogLevel slog.Level
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Port == "" {
		el.Add(fmt.Errorf("PORT is required"))
	}
	switch c.LLMProvider {
	case "openai", "ollama":
	default:
		el.Add(fmt.Errorf("LLM_PROVIDER %q must be openai or ollama", c.LLMProvider))
	}
	if u, err := url.Parse(c.LLMBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		el.Add(fmt.Errorf("LLM_BASE_URL %q is not a valid URL", c.LLMBaseURL))
	}
	if c.ModelName == "" {
		el.Add(fmt.Errorf("MODEL_NAME is required"))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		el.Add(fmt.Errorf("LLM_TEMPERATURE %v must be between 0 and 2", c.LLMTemperature))
	}
	if c.TurnTimeout <= 0 {
		el.Add(fmt.Errorf("TURN_TIMEOUT must be positive"))
	}
	if c.MaxAttempts < 1 {
		el.Add(fmt.Errorf("MAX_ATTEMPTS must be at least 1"))
	}
	if c.RetryBackoff < 0 {
		el.Add(fmt.Errorf("RETRY_BACKOFF must not be negative"))
	}
	if c.SaveTTL < 0 {
		el.Add(fmt.Errorf("SAVE_TTL must not be negative"))
	}

	switch c.StorageBackend {
	case StorageFile:
		if c.SaveDir == "" {
			el.Add(fmt.Errorf("SAVE_DIR is required for the file backend"))
		}
	case StorageRedis:
		if c.RedisURL == "" {
			el.Add(fmt.Errorf("REDIS_URL is required for the redis backend"))
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			el.Add(fmt.Errorf("SQLITE_PATH is required for the sqlite backend"))
		}
	case StorageMemory:
	default:
		el.Add(fmt.Errorf("STORAGE_BACKEND %q must be one of file, redis, sqlite, memory", c.StorageBackend))
	}

	return el.Err()
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
