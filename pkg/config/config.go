// Package config provides configuration loading and management for the
// maxtree CLI. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use when the CLI
		// processes a batch of images.
		NumCores int `yaml:"numCores"`

		// Connectivity selects 4- or 8-neighbor adjacency in 2-D images.
		Connectivity int `yaml:"connectivity"`

		// Attribute selects which attribute drives filtering: "area",
		// "boundingBoxDiagonal", or "elongation".
		Attribute string `yaml:"attribute"`

		// Threshold is the attribute cutoff passed to the filter.
		Threshold float64 `yaml:"threshold"`

		// CutFirst selects CutFirstFilter over DirectFilter. Required
		// (and forced on) for the elongation attribute, since it is not
		// increasing.
		CutFirst bool `yaml:"cutFirst"`
	} `yaml:"processing"`

	// Denoise parameters
	Denoise struct {
		// Enabled runs SmoothGaussian2D before building the tree.
		Enabled bool `yaml:"enabled"`

		// Sigma is the Gaussian smoothing radius in pixels.
		Sigma float64 `yaml:"sigma"`
	} `yaml:"denoise"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save intermediary
		// processing stages (denoised input, raw attribute map) alongside
		// the final output.
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// Verbose is loaded and saved with the config; the maxtree CLI
		// does not read it.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Test parameters
	Test struct {
		// Thresholds is a list of thresholds for a threshold sweep. The
		// maxtree CLI does not run a sweep and does not read this field.
		Thresholds []float64 `yaml:"thresholds"`

		// OutputDir is a directory for threshold sweep results. The
		// maxtree CLI does not read this field.
		OutputDir string `yaml:"outputDir"`
	} `yaml:"test"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Connectivity = 4
	cfg.Processing.Attribute = "area"
	cfg.Processing.Threshold = 50
	cfg.Processing.CutFirst = false

	cfg.Denoise.Enabled = false
	cfg.Denoise.Sigma = 1.0

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.Verbose = true

	cfg.Test.Thresholds = []float64{10, 50, 100, 500, 1000}
	cfg.Test.OutputDir = "threshold_sweep"

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
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

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
