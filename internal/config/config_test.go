package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withWorkdir runs the test from an empty directory so stray config.yaml
// files in the repo cannot leak into Load.
func withWorkdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"KPILENS_LOGGING_LEVEL",
		"KPILENS_CACHE_TTL",
		"KPILENS_CACHE_MAX_ENTRIES",
		"KPILENS_ANALYSIS_MAX_FILE_SIZE_BYTES",
		"KPILENS_ANALYSIS_DEFAULT_LANG",
		"KPILENS_RADAR_LIBRARY_PATH",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	withWorkdir(t)
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Cache.MaxEntries)
	assert.Equal(t, int64(32<<20), cfg.Analysis.MaxFileSizeBytes)
	assert.Equal(t, "en", cfg.Analysis.DefaultLang)
	assert.Empty(t, cfg.Radar.LibraryPath)
}

func TestLoadFromEnv(t *testing.T) {
	withWorkdir(t)
	clearEnv(t)

	t.Setenv("KPILENS_LOGGING_LEVEL", "debug")
	t.Setenv("KPILENS_CACHE_TTL", "5m")
	t.Setenv("KPILENS_CACHE_MAX_ENTRIES", "4")
	t.Setenv("KPILENS_RADAR_LIBRARY_PATH", "/etc/kpilens/dims.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Cache.MaxEntries)
	assert.Equal(t, "/etc/kpilens/dims.json", cfg.Radar.LibraryPath)
}

func TestLoadFromFile(t *testing.T) {
	dir := withWorkdir(t)
	clearEnv(t)

	yaml := `
logging:
  level: warn
cache:
  ttl: 10m
  max_entries: 2
radar:
  library_path: dims.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Cache.MaxEntries)
	assert.Equal(t, "dims.json", cfg.Radar.LibraryPath)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := withWorkdir(t)
	clearEnv(t)

	yaml := `
cache:
  ttl: 10m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("KPILENS_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache ttl"},
		{"zero entries", func(c *Config) { c.Cache.MaxEntries = 0 }, "max entries"},
		{"zero file size", func(c *Config) { c.Analysis.MaxFileSizeBytes = 0 }, "max file size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("format pinned to json", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = "text"
		require.NoError(t, cfg.validate())
		assert.Equal(t, "json", cfg.Logging.Format)
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Cache.MaxEntries)
}
