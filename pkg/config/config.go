// Package config provides configuration loading and management for skelanalyze.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"skelanalyze/internal/models"
	"skelanalyze/pkg/skeleton"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Calibration is the physical voxel spacing of the input stack
	Calibration models.Calibration `yaml:"calibration"`

	// Input parameters
	Input struct {
		// Threshold is the pixel intensity above which a voxel is foreground
		Threshold uint8 `yaml:"threshold"`

		// Extensions lists the slice image file extensions to load
		Extensions []string `yaml:"extensions"`
	} `yaml:"input"`

	// Analysis parameters
	Analysis struct {
		// PruneEndBranches enables end-branch erosion before tree labeling
		PruneEndBranches bool `yaml:"pruneEndBranches"`

		// MaxTrees caps the number of labeled trees
		MaxTrees int `yaml:"maxTrees"`
	} `yaml:"analysis"`

	// Output parameters
	Output struct {
		// Format of the results table: table, csv or json
		Format string `yaml:"format"`

		// TaggedDir receives the tagged stack as slice images when set
		TaggedDir string `yaml:"taggedDir"`

		// TreesDir receives the tree label stack as slice images when set
		TreesDir string `yaml:"treesDir"`

		// Axis along which stacks are exported
		Axis string `yaml:"axis"`

		// Database is the SQLite file runs are recorded in, empty to disable
		Database string `yaml:"database"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Calibration = models.Isotropic(1.0)

	cfg.Input.Threshold = 0
	cfg.Input.Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

	cfg.Analysis.PruneEndBranches = false
	cfg.Analysis.MaxTrees = skeleton.MaxTrees

	cfg.Output.Format = "table"
	cfg.Output.Axis = "z"
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if c.Analysis.MaxTrees < 1 || c.Analysis.MaxTrees > skeleton.MaxTrees {
		return fmt.Errorf("maxTrees must be between 1 and %d, got %d", skeleton.MaxTrees, c.Analysis.MaxTrees)
	}
	switch c.Output.Format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	switch c.Output.Axis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", c.Output.Axis)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
