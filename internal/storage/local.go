package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when an upload is attempted without S3.
var ErrS3NotConfigured = errors.New("storage: S3 is not configured")

// ErrInvalidName is returned for artifact names that are empty or would
// escape the output directory.
var ErrInvalidName = errors.New("storage: invalid artifact name")

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "adwizard-output"

// LocalStorage implements Storage on local disk.
type LocalStorage struct {
	dir string
}

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates the output directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the output directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes data to dir/name through a temp file so a failed write never
// leaves a truncated artifact behind.
func (s *LocalStorage) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close artifact: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move artifact into place: %w", err)
	}
	return path, nil
}

// Open reads a saved artifact.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	f, err := os.Open(path) // #nosec G304 - path comes from Save
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

// Upload is not supported by LocalStorage.
func (s *LocalStorage) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}
