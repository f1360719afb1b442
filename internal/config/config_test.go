package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "tiff", cfg.Format)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Input)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	base := writeConfig(t, "base.toml", `
input = "/data/in"
format = "png"
workers = 2

[logging]
level = "debug"
`)
	override := writeConfig(t, "override.toml", `
format = "jpeg"
jpeg_quality = 75
`)

	cfg, err := LoadFromFiles(base, "", override)
	require.NoError(t, err)
	assert.Equal(t, "/data/in", cfg.Input)
	assert.Equal(t, "jpeg", cfg.Format)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 75, cfg.JPEGQuality)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := writeConfig(t, "bad.toml", "format = [")
	_, err = LoadFromFiles(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PDFTRIAGE_FORMAT", "png")
	t.Setenv("PDFTRIAGE_WORKERS", "3")
	t.Setenv("PDFTRIAGE_JPEG_QUALITY", "80")
	t.Setenv("PDFTRIAGE_LOG_LEVEL", "warn")

	file := writeConfig(t, "c.toml", `format = "jpeg"`)
	cfg, err := LoadFromFiles(file)
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestEnvOverrides_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("PDFTRIAGE_WORKERS", "many")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
}

func TestApplyFlagOverrides(t *testing.T) {
	t.Setenv("PDFTRIAGE_FORMAT", "png")
	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	ApplyFlagOverrides(cfg, "in", "out", "jpeg", 0)
	assert.Equal(t, "in", cfg.Input)
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, "jpeg", cfg.Format)
	assert.Equal(t, 1, cfg.Workers, "zero workers flag keeps the current value")

	ApplyFlagOverrides(cfg, "", "", "", 4)
	assert.Equal(t, "in", cfg.Input)
	assert.Equal(t, "jpeg", cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Input = "in"
		cfg.Output = "out"
		return cfg
	}

	cfg := valid()
	cfg.Format = " JPEG "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "jpeg", cfg.Format)

	tests := map[string]func(*Config){
		"missing input":    func(c *Config) { c.Input = "" },
		"missing output":   func(c *Config) { c.Output = "" },
		"unknown format":   func(c *Config) { c.Format = "webp" },
		"zero workers":     func(c *Config) { c.Workers = 0 },
		"quality too high": func(c *Config) { c.JPEGQuality = 101 },
		"bad level":        func(c *Config) { c.Logging.Level = "verbose" },
		"bad log output":   func(c *Config) { c.Logging.Output = []string{"syslog"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), "invalid configuration")
		})
	}
}

func TestSetupLogger_FileOutput(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output = t.TempDir()
	cfg.Logging.Output = []string{"file"}

	logger := SetupLogger(cfg)
	require.NotNil(t, logger)
	assert.DirExists(t, cfg.Output)
}
