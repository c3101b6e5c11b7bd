// Package config loads warchest configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all warchest configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote data gateway.
type APIConfig struct {
	// BaseURL is the backend API root.
	BaseURL string `yaml:"base_url"`
	// Timeout is a Go duration string, e.g. "30s".
	Timeout string `yaml:"timeout"`
}

// GeminiConfig configures the content generator and the live coach.
type GeminiConfig struct {
	// APIKey can also be supplied via the GEMINI_API_KEY environment
	// variable, which wins over the file.
	APIKey    string `yaml:"api_key"`
	LiveModel string `yaml:"live_model"`
}

// StorageConfig locates the local stores.
type StorageConfig struct {
	// DataDir holds the Badger key-value store.
	DataDir string `yaml:"data_dir"`
	// HistoryPath is the SQLite content-history archive.
	HistoryPath string `yaml:"history_path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the baseline configuration rooted under ~/.warchest.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, ".warchest")
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3001/api",
			Timeout: "30s",
		},
		Storage: StorageConfig{
			DataDir:     filepath.Join(root, "data"),
			HistoryPath: filepath.Join(root, "history.db"),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if base := os.Getenv("WARCHEST_API_URL"); base != "" {
		cfg.API.BaseURL = base
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if _, err := time.ParseDuration(c.API.Timeout); c.API.Timeout != "" && err != nil {
		return fmt.Errorf("config: invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

// APITimeout parses the configured gateway timeout.
func (c *Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DefaultPath returns the expected config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".warchest", "config.yaml")
}
