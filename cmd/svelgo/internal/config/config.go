// Package config loads and saves the svelgo.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the svelgo.yaml configuration.
type Config struct {
	// Source directory scanned for .svelte components
	SrcDir string `yaml:"srcDir,omitempty"`

	// Output directory for compiled modules
	OutDir string `yaml:"outDir,omitempty"`

	// Output module format: esm or cjs
	Format string `yaml:"format,omitempty"`

	// Compiler options applied to every component
	Compiler *CompilerConfig `yaml:"compiler,omitempty"`

	// Development server configuration
	Dev *DevConfig `yaml:"dev,omitempty"`
}

// CompilerConfig contains per-project compiler options.
type CompilerConfig struct {
	// Compile components as custom elements
	CustomElement bool `yaml:"customElement,omitempty"`

	// Default namespace: html, svg, mathml or foreign
	Namespace string `yaml:"namespace,omitempty"`

	// Assume immutable data for change detection
	Immutable bool `yaml:"immutable,omitempty"`

	// Generate property accessors
	Accessors bool `yaml:"accessors,omitempty"`

	// Keep whitespace between markup nodes
	PreserveWhitespace bool `yaml:"preserveWhitespace,omitempty"`

	// Loop guard timeout in milliseconds for dev builds; 0 disables
	LoopGuardTimeout int `yaml:"loopGuardTimeout,omitempty"`
}

// DevConfig contains development server configuration.
type DevConfig struct {
	// Server port
	Port int `yaml:"port,omitempty"`

	// Server host
	Host string `yaml:"host,omitempty"`

	// Open browser on start
	Open bool `yaml:"open,omitempty"`
}

// Load loads configuration from svelgo.yaml in projectPath, falling back to
// defaults when the file does not exist.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, "svelgo.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save saves configuration to svelgo.yaml in projectPath.
func Save(config *Config, projectPath string) error {
	configPath := filepath.Join(projectPath, "svelgo.yaml")

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SrcDir: "src",
		OutDir: "dist",
		Format: "esm",
		Compiler: &CompilerConfig{
			Namespace:        "html",
			LoopGuardTimeout: 100,
		},
		Dev: &DevConfig{
			Port: 3000,
			Host: "localhost",
			Open: false,
		},
	}
}

// applyDefaults applies default values to missing configuration.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.SrcDir == "" {
		config.SrcDir = defaults.SrcDir
	}
	if config.OutDir == "" {
		config.OutDir = defaults.OutDir
	}
	if config.Format == "" {
		config.Format = defaults.Format
	}

	if config.Compiler == nil {
		config.Compiler = defaults.Compiler
	} else if config.Compiler.Namespace == "" {
		config.Compiler.Namespace = defaults.Compiler.Namespace
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Format != "esm" && c.Format != "cjs" {
		return fmt.Errorf("invalid output format %q (expected esm or cjs)", c.Format)
	}
	switch c.Compiler.Namespace {
	case "", "html", "svg", "mathml", "foreign":
	default:
		return fmt.Errorf("invalid namespace %q", c.Compiler.Namespace)
	}
	return nil
}
