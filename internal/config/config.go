package config

import (
	"fmt"
	"os"
	"runtime"
	"time"
	_ "time/tzdata" // timezone names resolve without system zoneinfo

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"duplitree/internal/hash"
)

type Config struct {
	Database  string   `yaml:"database"`
	Algorithm string   `yaml:"algorithm"`
	Workers   int      `yaml:"workers"`
	Timezone  string   `yaml:"timezone"`
	LogLevel  string   `yaml:"log_level"`
	Exclude   []string `yaml:"exclude"`
}

func DefaultConfig() *Config {
	return &Config{
		Database:  "duplitree.db",
		Algorithm: hash.DefaultAlgorithm.String(),
		Workers:   runtime.NumCPU() * 2,
		Timezone:  "UTC",
		LogLevel:  "info",
		Exclude: []string{
			".git/",
			".svn/",
			".hg/",
			"__pycache__/",
			".DS_Store",
			"Thumbs.db",
		},
	}
}

// LoadConfig reads the YAML file at path. A missing file yields the
// defaults; keys absent from an existing file also fall back to them,
// except exclude, which stays empty so a config can turn exclusions off.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Exclude = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Initialize Exclude slice if nil (for empty configs)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value that is parsed later on.
func (c *Config) Validate() error {
	if _, err := c.HashAlgorithm(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Database == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}

func (c *Config) HashAlgorithm() (hash.Algorithm, error) {
	return hash.ParseAlgorithm(c.Algorithm)
}

// Location resolves Timezone; file timestamps are stored in this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
