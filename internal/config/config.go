// Package config loads the process configuration from defaults, an
// optional YAML file and environment variables, in that order.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config defines process configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Calendar CalendarConfig `yaml:"calendar"`
}

// StoreConfig selects and configures the event store backend.
type StoreConfig struct {
	// Backend is one of "memory", "file" or "sqlite".
	Backend string `yaml:"backend" env:"PARTFLOW_STORE_BACKEND"`
	// Dir is the root directory of the file backend.
	Dir string `yaml:"dir" env:"PARTFLOW_STORE_DIR"`
	// DBPath is the database file of the sqlite backend.
	DBPath string `yaml:"db_path" env:"PARTFLOW_DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"PARTFLOW_LOG_LEVEL"`
}

// CalendarConfig points at an optional working-calendar YAML file.
// When Path is empty the built-in default calendar applies.
type CalendarConfig struct {
	Path string `yaml:"path" env:"PARTFLOW_CALENDAR_PATH"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables win over the file.
func Load() (Config, error) {
	cfg := Config{
		Store: StoreConfig{
			Backend: "sqlite",
			Dir:     "partflow-events",
			DBPath:  "partflow.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("PARTFLOW_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "sqlite":
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
