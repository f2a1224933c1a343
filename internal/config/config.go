// Package config loads CLI settings from a YAML file and MEALIE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "MEALIE_"

type Config struct {
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	SessionDB string        `koanf:"session_db"`
	Keyring   bool          `koanf:"keyring"`
	Timeout   time.Duration `koanf:"timeout"`
	LogLevel  string        `koanf:"log_level"`
	LogFormat string        `koanf:"log_format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SessionDB: filepath.Join(configDir(), "sessions.db"),
		Timeout:   30 * time.Second,
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "mealie")
}

// Load reads path (a missing file is fine) and then the environment, which
// overrides the file. Keys missing from both keep their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %s", cfg.Timeout)
	}
	return cfg, nil
}
