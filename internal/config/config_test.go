package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"ADWIZARD_API_URL",
	"ADWIZARD_HTTP_TIMEOUT",
	"ADWIZARD_CATALOG_MAX_RETRIES",
	"ADWIZARD_STATE_DIR",
	"ADWIZARD_OUTPUT_DIR",
	"S3_BUCKET",
	"S3_REGION",
	"S3_ENDPOINT",
	"S3_PREFIX",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"LOG_FORMAT",
	"LOG_LEVEL",
}

// clearEnv unsets every variable the config reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 5*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.CatalogMaxRetries)
	assert.Equal(t, "adwizard-output", cfg.OutputDir)
	assert.NotEmpty(t, cfg.StateDir)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, "adwizard/", cfg.S3Prefix)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	stateDir := t.TempDir()
	t.Setenv("ADWIZARD_API_URL", "https://ads.example.com")
	t.Setenv("ADWIZARD_HTTP_TIMEOUT", "90s")
	t.Setenv("ADWIZARD_CATALOG_MAX_RETRIES", "5")
	t.Setenv("ADWIZARD_STATE_DIR", stateDir)
	t.Setenv("ADWIZARD_OUTPUT_DIR", "/custom/out")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_PREFIX", "campaigns/spring")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithEnvFile("")
	require.NoError(t, err)

	assert.Equal(t, "https://ads.example.com", cfg.APIURL)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.CatalogMaxRetries)
	assert.Equal(t, stateDir, cfg.StateDir)
	assert.Equal(t, filepath.Join(stateDir, "session.json"), cfg.SessionFile())
	assert.Equal(t, "/custom/out", cfg.OutputDir)
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, "campaigns/spring", cfg.S3Prefix)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADWIZARD_API_URL", "localhost:8000")

	_, err := LoadWithEnvFile("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAPIURL)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADWIZARD_API_URL=http://backend:9000\nLOG_LEVEL=error\n"), 0o600))

	t.Run("values come from the dotenv file", func(t *testing.T) {
		cfg, err := LoadWithEnvFile(envFile)
		require.NoError(t, err)
		assert.Equal(t, "http://backend:9000", cfg.APIURL)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("missing dotenv file is ignored", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	})
}

func TestConfig_String_MasksSecrets(t *testing.T) {
	cfg := &Config{
		APIURL:             "http://localhost:8000",
		StateDir:           "/state",
		AWSAccessKeyID:     "AKIAEXAMPLE",
		AWSSecretAccessKey: "super-secret",
	}

	s := cfg.String()
	assert.Contains(t, s, "http://localhost:8000")
	assert.NotContains(t, s, "AKIAEXAMPLE")
	assert.NotContains(t, s, "super-secret")
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		logAt     slog.Level
		wantEmpty bool
		wantJSON  bool
	}{
		{name: "json format", format: "json", level: "info", logAt: slog.LevelInfo, wantJSON: true},
		{name: "text format", format: "text", level: "info", logAt: slog.LevelInfo},
		{name: "debug filtered at warn", format: "text", level: "warn", logAt: slog.LevelDebug, wantEmpty: true},
		{name: "unknown level defaults to info", format: "text", level: "chatty", logAt: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &Config{LogFormat: tt.format, LogLevel: tt.level}
			logger := cfg.NewLoggerTo(&buf)

			logger.Log(t.Context(), tt.logAt, "hello", slog.String("k", "v"))

			if tt.wantEmpty {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), "hello")
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"k":"v"`)
			} else {
				assert.Contains(t, buf.String(), "k=v")
			}
		})
	}
}
