package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, int64(20<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{".xlsx", ".xls", ".csv"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 1024, cfg.Chart.Width)
	assert.Equal(t, 576, cfg.Chart.Height)
	assert.True(t, cfg.Data.DayFirst)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  host: 127.0.0.1
session:
  ttl: 30m
chart:
  width: 800
  height: 450
data:
  day_first: false
upload:
  allowed_extensions: [".CSV"]
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 800, cfg.Chart.Width)
	assert.False(t, cfg.Data.DayFirst)
	assert.Equal(t, []string{".csv"}, cfg.Upload.AllowedExtensions)
	// untouched sections keep defaults
	assert.Equal(t, "salesdash_session", cfg.Session.CookieName)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\nsession:\n  ttl: 30m\n")
	t.Setenv("SALESDASH_SERVER_PORT", "7070")
	t.Setenv("SALESDASH_UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("SALESDASH_LOGGING_LEVEL", "DEBUG")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "port out of range", env: map[string]string{"SALESDASH_SERVER_PORT": "70000"}},
		{name: "zero port", file: "server:\n  port: 0\n"},
		{name: "ttl too short", env: map[string]string{"SALESDASH_SESSION_TTL": "10s"}},
		{name: "negative read timeout", env: map[string]string{"SALESDASH_SERVER_READ_TIMEOUT": "-1s"}},
		{name: "unknown log level", env: map[string]string{"SALESDASH_LOGGING_LEVEL": "verbose"}},
		{name: "tiny chart", env: map[string]string{"SALESDASH_CHART_WIDTH": "10"}},
		{name: "extension without dot", env: map[string]string{"SALESDASH_UPLOAD_ALLOWED_EXTENSIONS": "csv"}},
		{name: "cors without origins", file: "security:\n  enable_cors: true\n  allowed_origins: []\n"},
		{name: "unknown yaml key", file: "server:\n  prot: 8080\n"},
		{name: "malformed env", env: map[string]string{"SALESDASH_SERVER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultSetsFilePathForFileOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "logs/salesdash.log", cfg.Logging.FilePath)
}
