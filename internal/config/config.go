// Package config loads adwizard settings from the environment and an
// optional dotenv file, and builds the slog logger.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultEnvFile is the dotenv file read before the environment is processed.
const DefaultEnvFile = ".env"

// Static errors for configuration validation.
var (
	// ErrInvalidAPIURL is returned when ADWIZARD_API_URL is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("config: ADWIZARD_API_URL must be an absolute http(s) URL")
	// ErrStateDirRequired is returned when no state directory could be resolved.
	ErrStateDirRequired = errors.New("config: ADWIZARD_STATE_DIR could not be resolved")
)

// Config holds all configuration for the application.
type Config struct {
	// Backend settings
	APIURL            string        `env:"ADWIZARD_API_URL, default=http://localhost:8000" json:"api_url" validate:"required,url"`
	HTTPTimeout       time.Duration `env:"ADWIZARD_HTTP_TIMEOUT, default=5m" json:"http_timeout" validate:"gt=0"`
	CatalogMaxRetries int           `env:"ADWIZARD_CATALOG_MAX_RETRIES, default=3" json:"catalog_max_retries" validate:"min=0,max=10"`

	// Session and artifact settings
	StateDir  string `env:"ADWIZARD_STATE_DIR" json:"state_dir"`
	OutputDir string `env:"ADWIZARD_OUTPUT_DIR, default=adwizard-output" json:"output_dir"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX, default=adwizard/" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json TEXT JSON"`
	LogLevel  string `env:"LOG_LEVEL, default=warn" json:"log_level"`
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// SessionFile returns the path of the persisted session store.
func (c *Config) SessionFile() string {
	return filepath.Join(c.StateDir, "session.json")
}

// LoadWithEnvFile reads envFile (missing files are ignored) and then
// processes the environment with go-envconfig. Variables already set in the
// environment win over the dotenv file.
func LoadWithEnvFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.StructField() == "APIURL" {
					return ErrInvalidAPIURL
				}
			}
		}
		return fmt.Errorf("config: %w", err)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return ErrInvalidAPIURL
	}
	if c.StateDir == "" {
		return ErrStateDirRequired
	}
	return nil
}

// NewLoggerTo creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs; otherwise human-readable
// text logs. Stdout is left to command output.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{APIURL: %s, HTTPTimeout: %s, CatalogMaxRetries: %d, StateDir: %s, OutputDir: %s, S3Bucket: %s, S3Region: %s, S3Prefix: %s, LogFormat: %s, LogLevel: %s}",
		c.APIURL,
		c.HTTPTimeout,
		c.CatalogMaxRetries,
		c.StateDir,
		c.OutputDir,
		c.S3Bucket,
		c.S3Region,
		c.S3Prefix,
		c.LogFormat,
		c.LogLevel,
	)
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "adwizard")
	}
	return filepath.Join(os.TempDir(), "adwizard")
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
