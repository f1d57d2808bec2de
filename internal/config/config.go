// Package config loads planner settings from a TOML file with environment
// overrides for deployment knobs.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all cashplan configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StorageConfig selects and configures the backing store.
// Driver is one of memory, sqlite, postgres.
type StorageConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path,omitempty"` // sqlite file path
	DSN    string `toml:"dsn,omitempty"`  // postgres connection string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or text
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{Driver: "memory"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the config file at path, returning defaults if path is empty
// or the file doesn't exist. CASHPLAN_ADDR and DATABASE_URL env vars
// override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config: %w", err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if addr := strings.TrimSpace(os.Getenv("CASHPLAN_ADDR")); addr != "" {
		cfg.Server.Addr = addr
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		cfg.Storage.Driver = "postgres"
		cfg.Storage.DSN = dsn
	}
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.Log.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		cfg.Log.Format = format
	}

	switch cfg.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return cfg, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		return cfg, fmt.Errorf("storage.path is required for the sqlite driver")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DSN == "" {
		return cfg, fmt.Errorf("storage.dsn is required for the postgres driver")
	}
	return cfg, nil
}

// Logger builds a slog.Logger from the log settings.
func (c Config) Logger() *slog.Logger {
	level := parseLogLevel(c.Log.Level)
	if strings.ToLower(c.Log.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
