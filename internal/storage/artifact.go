package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedSource is returned for artifact sources that are neither
	// data URIs nor http(s) URLs.
	ErrUnsupportedSource = errors.New("storage: unsupported artifact source")
	// ErrMalformedDataURI is returned when a data URI cannot be decoded.
	ErrMalformedDataURI = errors.New("storage: malformed data URI")
	// ErrDownloadFailed is returned when a remote artifact cannot be fetched.
	ErrDownloadFailed = errors.New("storage: download failed")
)

// maxDownloadSize caps remote artifact downloads (avatar videos included).
const maxDownloadSize = 512 << 20

// Artifact is decoded artifact content with its detected type.
type Artifact struct {
	Data []byte
	MIME string
	// Ext includes the leading dot, e.g. ".mp3". Empty when unknown.
	Ext string
}

// DecodeDataURI decodes a base64 data URI such as
// "data:audio/mpeg;base64,SUQz...".
func DecodeDataURI(uri string) (*Artifact, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrMalformedDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrMalformedDataURI
	}
	declared, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDataURI, err)
	}
	return newArtifact(data, declared), nil
}

func newArtifact(data []byte, declared string) *Artifact {
	detected := mimetype.Detect(data)
	a := &Artifact{Data: data, MIME: detected.String(), Ext: detected.Extension()}

	// Sniffing short or unusual payloads yields octet-stream; trust the
	// declared type then.
	if detected.Is("application/octet-stream") && declared != "" {
		a.MIME = declared
		if m := mimetype.Lookup(declared); m != nil {
			a.Ext = m.Extension()
		} else {
			a.Ext = ""
		}
	}
	return a
}

// Fetcher resolves artifact sources into bytes.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A nil client gets a 5 minute timeout.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch decodes a data URI or downloads an http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, src string) (*Artifact, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return DecodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return f.download(ctx, src)
	default:
		return nil, fmt.Errorf("%w: %.32q", ErrUnsupportedSource, src)
	}
}

func (f *Fetcher) download(ctx context.Context, url string) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if n > maxDownloadSize {
		return nil, fmt.Errorf("%w: artifact exceeds %d bytes", ErrDownloadFailed, maxDownloadSize)
	}

	f.logger.Debug("artifact downloaded",
		slog.String("url", url),
		slog.Int64("bytes", n),
		slog.Duration("elapsed", time.Since(start)),
	)

	declared, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return newArtifact(buf.Bytes(), strings.TrimSpace(declared)), nil
}
