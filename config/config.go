// Package config loads the harvester configuration from
// ~/.medharvest/config.yaml. Command-line flags and environment variables
// override file values; the file itself is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full harvester configuration.
type Config struct {
	// Tags to harvest and the publication year the final filter requires.
	Tags []string `yaml:"tags"`
	Year int      `yaml:"year"`

	// DataDir holds link sets and exported records; Registry is the tag
	// registry database.
	DataDir  string `yaml:"data_dir"`
	Registry string `yaml:"registry"`

	// Schedule is a cron expression for watch mode.
	Schedule string `yaml:"schedule"`

	Browser   BrowserConfig   `yaml:"browser"`
	Collector CollectorConfig `yaml:"collector"`
	Extractor ExtractorConfig `yaml:"extractor"`
}

// BrowserConfig configures the rendering sessions.
type BrowserConfig struct {
	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`
	UserAgent  string `yaml:"user_agent"`
}

// CollectorConfig bounds collection runs.
type CollectorConfig struct {
	MaxScrolls      int     `yaml:"max_scrolls"`
	ScrollPauseSecs float64 `yaml:"scroll_pause_seconds"`
	StallLimit      int     `yaml:"stall_limit"`
	SeedFromFeed    bool    `yaml:"seed_from_feed"`
}

// ExtractorConfig bounds batch extraction.
type ExtractorConfig struct {
	PacingSecs float64 `yaml:"pacing_seconds"`
	Workers    int     `yaml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Tags:     []string{"ux-design", "artificial-intelligence"},
		Year:     2025,
		DataDir:  "data",
		Registry: "medharvest.db",
		Schedule: "0 6 * * *",
		Browser: BrowserConfig{
			Headless: true,
		},
		Collector: CollectorConfig{
			MaxScrolls:      150,
			ScrollPauseSecs: 2.5,
			StallLimit:      6,
			SeedFromFeed:    true,
		},
		Extractor: ExtractorConfig{
			PacingSecs: 2.5,
			Workers:    1,
		},
	}
}

// Load reads ~/.medharvest/config.yaml over the defaults. A missing file is
// not an error; a file that exists but cannot be parsed is.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return LoadFile(filepath.Join(homeDir, ".medharvest", "config.yaml"))
}

// LoadFile reads a specific configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
