// Package config provides the typed view of the tool-relevant manifest
// keys. The binary-target list itself is edited through the manifest
// package; this only carries project settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schaermu/bintool/internal/lang"
	"gopkg.in/yaml.v3"
)

// Config holds the project settings read from the manifest
type Config struct {
	Name      string     `yaml:"name"`
	Language  string     `yaml:"language"`
	SourceDir string     `yaml:"source_dir"`
	Tidy      TidyConfig `yaml:"tidy"`
}

// TidyConfig configures tidy behavior
type TidyConfig struct {
	Recursive bool `yaml:"recursive"`
}

// Load reads and parses the settings from the manifest file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest settings: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-value fields with the documented defaults.
func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = lang.Go.Name
	}
	if c.SourceDir == "" {
		c.SourceDir = "src"
	}
}

// Validate checks the settings for errors
func (c *Config) Validate() error {
	if _, err := lang.ByName(c.Language); err != nil {
		return err
	}
	if filepath.IsAbs(c.SourceDir) {
		return fmt.Errorf("source_dir must be relative to the manifest: %s", c.SourceDir)
	}
	return nil
}
