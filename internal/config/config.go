package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	Environment   string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel      slog.Level    `env:"-"`
	DataDir       string        `env:"DATA_DIR" envDefault:"./data"`
	StrictContent bool          `env:"STRICT_CONTENT" envDefault:"false"`
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"memory"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"quest-engine.db"`
	SaveTTL       time.Duration `env:"SAVE_TTL" envDefault:"24h"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case DriverMemory, DriverRedis, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return &cfg, nil
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
