// Package config loads generator defaults from KEYFORGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"
	"github.com/provide-io/keyforge/pkg/utils/permissions"
)

// EnvPrefix is prepended to every variable name, e.g. KEYFORGE_LOG_LEVEL.
const EnvPrefix = "KEYFORGE"

// Config holds settings that flags may override.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	JSONLog   bool   `envconfig:"JSON_LOG" default:"false"`
	Output    string `envconfig:"OUTPUT" default:"Custom.mxtpro"`
	EntryName string `envconfig:"ENTRY_NAME" default:"Pro.key"`
	EntryMode string `envconfig:"ENTRY_MODE" default:"0644"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.EntryName) == "" {
		return errors.New("entry name cannot be empty")
	}
	if strings.ContainsAny(c.EntryName, `/\`) {
		return fmt.Errorf("entry name %q must not contain a path separator", c.EntryName)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// Mode returns the parsed entry permission bits.
func (c *Config) Mode() (uint16, error) {
	return permissions.ParseOctalString(c.EntryMode)
}
