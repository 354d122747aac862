// Package config loads backend configuration from YAML and environment.
package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the notary backend.
// Values come from an optional YAML file; environment variables
// override YAML for fields that support both.
type Config struct {
	// Server configuration (localhost UI boundary)
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`

	// DataDir is where the SQLite database lives.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Sync configuration
	Sync SyncConfig `yaml:"sync"`
}

// SyncConfig controls the background directory sync.
type SyncConfig struct {
	// SourcePath points at the notary payload standing in for the
	// remote directory API. Empty disables sync.
	SourcePath string `yaml:"source_path" env:"SYNC_SOURCE_PATH" env-default:""`

	// Interval between background sync runs.
	Interval time.Duration `yaml:"interval" env:"SYNC_INTERVAL" env-default:"15m"`

	// MaxRetries bounds the fetch retry loop.
	MaxRetries int `yaml:"max_retries" env:"SYNC_MAX_RETRIES" env-default:"3"`
}

// Load reads configuration from the given YAML path (if it exists)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
