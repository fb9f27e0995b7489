// Package config loads and validates serve configuration from the
// environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// DB driver names accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the serve configuration loaded from the environment.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8745".
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	// DBDriver selects the event store backend: sqlite or postgres.
	DBDriver string `mapstructure:"DB_DRIVER"`
	// DBPath is the SQLite database file. Used when DBDriver is sqlite.
	DBPath string `mapstructure:"DB_PATH"`
	// DatabaseURL is the Postgres DSN. Required when DBDriver is postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads the env file at path (default ".env"), then builds and
// validates Config from the environment. A missing default file is fine;
// the environment can carry everything. Env vars override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	usingDefault := path == ""
	if usingDefault {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		if !usingDefault || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8745")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "telestrator.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return errors.New("config: LISTEN_ADDR must be set")
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH must be set when DB_DRIVER=sqlite")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q (sqlite or postgres)", c.DBDriver)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL string onto a slog level. The empty string
// means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown LOG_LEVEL %q", s)
}

// Level returns the configured slog level. Load already validated it;
// an unparseable value falls back to info.
func (c *Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}
