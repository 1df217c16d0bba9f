// Package config loads engine and store settings from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/casegraph/pkg/casegraph"
	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
)

// Config holds engine and store settings.
type Config struct {
	Workers int         `yaml:"workers"`
	Minimal bool        `yaml:"minimal"`
	Store   StoreConfig `yaml:"store"`
}

// StoreConfig holds program-store settings.
type StoreConfig struct {
	Path      string `yaml:"path"`
	CacheSize int    `yaml:"cache_size"`
}

// Default returns the default configuration: worker count chosen by the
// engine, no minimality filtering, and a 128-entry store read cache.
func Default() Config {
	return Config{
		Store: StoreConfig{CacheSize: 128},
	}
}

// Load reads a YAML configuration file. Missing fields keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if c.Store.CacheSize < 0 {
		return fmt.Errorf("store cache_size must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c Config) Options() []casegraph.Option {
	var opts []casegraph.Option
	if c.Workers > 0 {
		opts = append(opts, casegraph.WithWorkers(c.Workers))
	}
	if c.Minimal {
		opts = append(opts, casegraph.WithMinimal())
	}
	return opts
}
