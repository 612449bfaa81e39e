// Package bootstrap provides dependency initialization for the ad wizard.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/config"
	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/steps"
	"github.com/maauso/adwizard/internal/storage"
)

// Dependencies holds everything a command or the TUI needs.
type Dependencies struct {
	Client   *api.HTTPClient
	Session  *session.Session
	Storage  storage.Storage
	Exporter *storage.Exporter
	Logger   *slog.Logger
}

// Steps returns the collaborators for the step screens.
func (d *Dependencies) Steps() steps.Deps {
	return steps.Deps{
		Client:  d.Client,
		Session: d.Session,
		Logger:  d.Logger,
	}
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := session.NewFileStore(cfg.SessionFile(), logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithMaxRetries(cfg.CatalogMaxRetries),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	artifacts, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("dependencies ready",
		slog.String("api_url", client.BaseURL()),
		slog.String("session_file", store.Path()),
	)

	return &Dependencies{
		Client:   client,
		Session:  session.New(store, logger),
		Storage:  artifacts,
		Exporter: storage.NewExporter(artifacts, nil, logger),
		Logger:   logger,
	}, nil
}

// initStorage creates the artifact storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, cfg.OutputDir, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Debug("local storage configured", slog.String("output_dir", cfg.OutputDir))
	return localStore, nil
}
