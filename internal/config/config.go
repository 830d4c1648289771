package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	Environment   string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel      slog.Level
	RedisURL      string        `env:"REDIS_URL"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RNGSeed       int64         `env:"RNG_SEED" envDefault:"0"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	if cfg.SessionTTL < 0 {
		return nil, fmt.Errorf("SESSION_TTL must not be negative, got %s", cfg.SessionTTL)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
