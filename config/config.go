// Package config loads server settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds every tunable of the server process
type Config struct {
	HTTPAddr       string        `env:"MM_HTTP_ADDR" envDefault:":8000"`
	HandDelay      time.Duration `env:"MM_HAND_DELAY" envDefault:"2500ms"`
	HistoryCap     int           `env:"MM_HISTORY_CAP" envDefault:"100"`
	StateHistory   int           `env:"MM_STATE_HISTORY" envDefault:"5"`
	Store          string        `env:"MM_STORE" envDefault:"memory"`
	StorePath      string        `env:"MM_STORE_PATH" envDefault:"game_state"`
	Restore        bool          `env:"MM_RESTORE" envDefault:"false"`
	AllowedOrigins []string      `env:"MM_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3001,http://localhost:3002,http://localhost:5173,http://localhost:5174,http://localhost:5175"`
	LogLevel       string        `env:"MM_LOG_LEVEL" envDefault:"info"`
	OTelEndpoint   string        `env:"MM_OTEL_ENDPOINT"`
	SendBuffer     int           `env:"MM_SEND_BUFFER" envDefault:"256"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment and then applies flag overrides from args
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.DurationVar(&cfg.HandDelay, "hand-delay", cfg.HandDelay, "pause between settlement and the next deal")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "snapshot store: memory, file or sqlite")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "snapshot directory or database path")
	fs.BoolVar(&cfg.Restore, "restore", cfg.Restore, "restore tables from the store on first reference")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Store != StoreMemory && strings.TrimSpace(c.StorePath) == "" {
		return errors.New("store path is required")
	}
	if c.HandDelay < 0 {
		return errors.New("hand delay must not be negative")
	}
	if c.HistoryCap <= 0 {
		return errors.New("history cap must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
