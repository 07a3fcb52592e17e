// Package config loads server settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration
type Config struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT" envDefault:"3000"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	MessageRate  float64 `env:"MESSAGE_RATE" envDefault:"10"`
	MessageBurst int     `env:"MESSAGE_BURST" envDefault:"20"`

	// RandomSeed makes enhancement rolls reproducible when non-zero
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`

	// House bots that play alongside real clients
	Bots        int           `env:"BOTS" envDefault:"0"`
	BotStrategy string        `env:"BOT_STRATEGY" envDefault:"target"`
	BotInterval time.Duration `env:"BOT_INTERVAL" envDefault:"2s"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory or redis, got %q", c.StorageType)
	}
	if c.MessageRate <= 0 || c.MessageBurst <= 0 {
		return errors.New("MESSAGE_RATE and MESSAGE_BURST must be positive")
	}
	if c.Bots < 0 {
		return fmt.Errorf("BOTS must not be negative, got %d", c.Bots)
	}
	if c.Bots > 0 && c.BotInterval <= 0 {
		return errors.New("BOT_INTERVAL must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
