package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/logging"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"gopkg.in/yaml.v3"
)

const (
	configDirName   = "zerobrave"
	configFileName  = "config.yaml"
	historyFileName = "history.jsonl"
)

// Config holds operator defaults. Command-line flags take precedence.
type Config struct {
	Profile    string `yaml:"profile"`
	Backup     bool   `yaml:"backup"`
	SourceURL  string `yaml:"source_url,omitempty"`
	LogLevel   string `yaml:"log_level"`
	PolicyPath string `yaml:"policy_path,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Profile:  string(policy.ProfileStrict),
		LogLevel: "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/zerobrave/config.yaml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// HistoryPath returns the run history file kept next to configFile.
func HistoryPath(configFile string) string {
	return filepath.Join(filepath.Dir(configFile), historyFileName)
}

// Load reads path. A missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 -- path is the operator's config file
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate rejects unknown profiles and log levels.
func (c *Config) Validate() error {
	if c.Profile != "" {
		if _, err := policy.LookupProfile(c.Profile); err != nil {
			return err
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}
