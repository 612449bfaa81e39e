// Package storage saves generated ad artifacts (voiceover audio, images,
// avatar videos) to a local output directory and, when configured, to S3.
package storage

import (
	"context"
	"io"
)

// Storage defines where exported artifacts end up.
type Storage interface {
	// Save writes data under name in the output directory and returns the
	// file path. An existing file with the same name is replaced.
	Save(ctx context.Context, name string, data io.Reader) (path string, err error)

	// Open reads a saved artifact back. The caller closes the reader.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Upload pushes data to S3 and returns its URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	Upload(ctx context.Context, key string, data io.Reader) (url string, err error)
}
