package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName   string `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DataDir        string `env:"DATA_DIR" envDefault:"./data"`
	DocumentFormat string `env:"DOCUMENT_FORMAT" envDefault:"xml"`
	KeyPrefix      string `env:"KEY_PREFIX" envDefault:"eventset"`

	LogLevel slog.Level
	Format   treefmt.Format
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	format, err := treefmt.ParseFormat(cfg.DocumentFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_FORMAT: %w", err)
	}
	cfg.Format = format

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
