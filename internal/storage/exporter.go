package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// ExportResult describes one exported artifact.
type ExportResult struct {
	Name string
	Path string
	// URL is set when the artifact was also uploaded to S3.
	URL  string
	MIME string
	Size int
}

// Exporter fetches artifacts and writes them to a Storage.
type Exporter struct {
	store   Storage
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(store Storage, fetcher *Fetcher, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, logger)
	}
	return &Exporter{store: store, fetcher: fetcher, logger: logger}
}

// Export resolves src and saves it as base plus the detected extension.
// When upload is set the saved file is also pushed to S3 under the same
// name, so the object always matches the local copy.
func (e *Exporter) Export(ctx context.Context, base, src string, upload bool) (*ExportResult, error) {
	artifact, err := e.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", base, err)
	}

	name := base + artifact.Ext
	path, err := e.store.Save(ctx, name, bytes.NewReader(artifact.Data))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", base, err)
	}

	res := &ExportResult{Name: name, Path: path, MIME: artifact.MIME, Size: len(artifact.Data)}

	if upload {
		url, err := e.upload(ctx, name, path)
		if err != nil {
			return res, fmt.Errorf("export %s: %w", base, err)
		}
		res.URL = url
	}

	e.logger.Info("artifact exported",
		slog.String("name", name),
		slog.String("path", path),
		slog.String("mime", artifact.MIME),
		slog.Int("bytes", res.Size),
		slog.Bool("uploaded", res.URL != ""),
	)
	return res, nil
}

func (e *Exporter) upload(ctx context.Context, name, path string) (string, error) {
	r, err := e.store.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()
	return e.store.Upload(ctx, name, r)
}
