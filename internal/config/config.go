// Package config loads the pdftriage configuration and builds its logger.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Input       string        `toml:"input" validate:"required"`  // Directory scanned for *.pdf files
	Output      string        `toml:"output" validate:"required"` // Directory receiving split pages, images and the report
	Format      string        `toml:"format" validate:"oneof=tiff png jpeg"`
	Workers     int           `toml:"workers" validate:"min=1,max=64"` // Documents processed in parallel
	JPEGQuality int           `toml:"jpeg_quality" validate:"min=1,max=100"`
	Logging     LoggingConfig `toml:"logging"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"` // "stdout", "file"
	File   string   `toml:"file"`                                             // Log file path (default: <output>/pdftriage.log)
}

// NewDefaultConfig creates a configuration with default values
// Input and Output have no defaults; the CLI requires them as flags
func NewDefaultConfig() *Config {
	return &Config{
		Format:      "tiff",
		Workers:     1,
		JPEGQuality: 90,
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. Flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if format := os.Getenv("PDFTRIAGE_FORMAT"); format != "" {
		config.Format = format
	}
	if workers := os.Getenv("PDFTRIAGE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			config.Workers = w
		}
	}
	if quality := os.Getenv("PDFTRIAGE_JPEG_QUALITY"); quality != "" {
		if q, err := strconv.Atoi(quality); err == nil {
			config.JPEGQuality = q
		}
	}
	if level := os.Getenv("PDFTRIAGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, input, output, format string, workers int) {
	// Command-line flags have highest priority
	if input != "" {
		config.Input = input
	}
	if output != "" {
		config.Output = output
	}
	if format != "" {
		config.Format = format
	}
	if workers > 0 {
		config.Workers = workers
	}
}

// Validate normalizes the format name and checks every field.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
