// Package models defines data structures for configuration, exports and imports.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendDryRun = "dry-run"

	DefaultRedisKey  = "pickpocket:reading-list"
	DefaultStepDelay = 500 * time.Millisecond
)

// Config holds runtime configuration. Values come from an optional YAML file and
// are overridden by CLI flags that were set explicitly.
type Config struct {
	Backend     string        `yaml:"backend"`
	DBPath      string        `yaml:"db_path"`
	Redis       RedisConfig   `yaml:"redis"`
	Mode        ImportMode    `yaml:"mode"`
	StepDelay   time.Duration `yaml:"step_delay"`
	IncludeRead bool          `yaml:"include_read"`
	Preview     PreviewConfig `yaml:"preview"`
	ReportDir   string        `yaml:"report_dir"`
}

// RedisConfig addresses the Redis reading list backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// PreviewConfig controls page fetching for preview text.
type PreviewConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	CacheDir  string        `yaml:"cache_dir"` // empty disables the page cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendSQLite,
		Mode:      ImportModeBulk,
		StepDelay: DefaultStepDelay,
		Redis: RedisConfig{
			Addr: "localhost:6379",
			Key:  DefaultRedisKey,
		},
		Preview: PreviewConfig{
			Timeout:   10 * time.Second,
			UserAgent: "pickpocket/1.0",
			CacheTTL:  24 * time.Hour,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file is not an error when path is empty.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that the YAML decoder cannot.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendRedis, BackendDryRun:
	case "":
		c.Backend = BackendSQLite
	default:
		return fmt.Errorf("unknown backend: %s (use: sqlite, redis or dry-run)", c.Backend)
	}

	mode, err := ParseImportMode(string(c.Mode))
	if err != nil {
		return err
	}
	c.Mode = mode

	if c.StepDelay < 0 {
		return errors.New("step_delay must not be negative")
	}
	if c.Redis.Key == "" {
		c.Redis.Key = DefaultRedisKey
	}
	return nil
}
