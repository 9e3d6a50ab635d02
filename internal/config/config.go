package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"countdown_tui/internal/preset"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "countdown_tui"
	configFileName = "config.yaml"
)

type Config struct {
	TickInterval time.Duration  `yaml:"tick_interval"`
	LogLevel     string         `yaml:"log_level"`
	History      HistoryConfig  `yaml:"history"`
	Presets      preset.Catalog `yaml:"presets"`
}

type HistoryConfig struct {
	// Path of the sqlite database. Empty disables history.
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		LogLevel:     logrus.InfoLevel.String(),
		History: HistoryConfig{
			Path:  "countdown_tui.db",
			Limit: 20,
		},
		Presets: preset.DefaultCatalog(),
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, configFileName), nil
}

// Load reads the config file at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(rawData, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c Config) Marshal() ([]byte, error) {
	serialized, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config yaml: %w", err)
	}
	return serialized, nil
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative, got %d", c.History.Limit)
	}
	return c.Presets.Validate()
}

func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
