// Package config holds the benchmark parameters: input tensor
// dimensions, run count, and session logging. Defaults match the
// canonical blur scenario and can be overridden by a YAML file and by
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Env variable names recognized by FromEnv.
const (
	EnvConfig = "BLURBENCH_CONFIG"
	EnvRuns   = "BLURBENCH_RUNS"
	EnvLogDir = "BLURBENCH_LOG_DIR"
)

// Config are the benchmark parameters.
type Config struct {
	Batch    int    `yaml:"batch"`
	Channels int    `yaml:"channels"`
	Height   int    `yaml:"height"`
	Width    int    `yaml:"width"`
	Runs     int    `yaml:"runs"`
	LogDir   string `yaml:"log_dir"`
}

// Default returns the canonical scenario: a batch of 32 images with 8
// channels at 258x258, timed over 100 runs.
func Default() Config {
	return Config{
		Batch:    32,
		Channels: 8,
		Height:   258,
		Width:    258,
		Runs:     100,
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays environment overrides onto the config.
func FromEnv(cfg Config) Config {
	if v := os.Getenv(EnvRuns); v != "" {
		if runs, err := strconv.Atoi(v); err == nil && runs > 0 {
			cfg.Runs = runs
		}
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
	}
	return cfg
}

// Validate checks the parameters. The blur needs at least 3 samples in
// each spatial dimension.
func (c Config) Validate() error {
	if c.Batch < 1 || c.Channels < 1 {
		return fmt.Errorf("config: batch and channels must be >= 1, got %d and %d", c.Batch, c.Channels)
	}
	if c.Height < 3 || c.Width < 3 {
		return fmt.Errorf("config: height and width must be >= 3, got %d and %d", c.Height, c.Width)
	}
	if c.Runs < 1 {
		return fmt.Errorf("config: runs must be >= 1, got %d", c.Runs)
	}
	return nil
}
