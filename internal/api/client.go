package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Static errors for backend client operations.
var (
	// ErrBaseURLRequired is returned when the backend base URL is not provided.
	ErrBaseURLRequired = errors.New("api: base URL is required")
	// ErrInvalidRequest is returned when a request fails local validation.
	ErrInvalidRequest = errors.New("api: invalid request")
	// ErrInvalidResponse is returned when a 2xx body does not match the expected shape.
	ErrInvalidResponse = errors.New("api: invalid response")
	// ErrServerError is returned when the backend answers with a 5xx status code.
	ErrServerError = errors.New("api: server error")
	// ErrRateLimited is returned when the backend answers with a 429 status code.
	ErrRateLimited = errors.New("api: rate limited")
	// ErrRequestFailed is returned when the backend answers with any other non-2xx status code.
	ErrRequestFailed = errors.New("api: request failed")
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// BackendError is a non-2xx answer from the backend. Its message is the raw
// response body so callers can show it to the user verbatim.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return e.Body
}

// Is maps the status code onto the package sentinel errors.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrServerError:
		return e.StatusCode >= 500
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrRequestFailed:
		return true
	}
	return false
}

// Client defines the backend operations used by the wizard steps.
type Client interface {
	// UploadProduct registers a product and its assets, returning the session.
	UploadProduct(ctx context.Context, req UploadProductRequest) (*UploadProductResponse, error)
	// GenerateScript asks the LLM for an ad script.
	GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResponse, error)
	// GenerateVoice narrates a script with the given voice.
	GenerateVoice(ctx context.Context, req VoiceRequest) (*VoiceResponse, error)
	// GenerateOptimizedImage renders an image from a reviewed prompt.
	GenerateOptimizedImage(ctx context.Context, req OptimizedImageRequest) (*OptimizedImageResponse, error)
	// GenerateImage renders an image from a prompt as-is.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
	// ListAvatars returns the avatar catalog.
	ListAvatars(ctx context.Context) ([]AvatarOption, error)
	// ListVoices returns the avatar voice catalog.
	ListVoices(ctx context.Context) ([]VoiceOption, error)
	// GenerateVideo renders a talking-avatar video.
	GenerateVideo(ctx context.Context, req VideoRequest) (*VideoResponse, error)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	validate    *validator.Validate
	logger      *slog.Logger
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-request timeout of the client's own
// http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(hc *HTTPClient) {
		if l != nil {
			hc.logger = l
		}
	}
}

// WithMaxRetries sets how many times catalog reads are retried on transient
// failures. Generation calls are never retried.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new backend client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &HTTPClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		validate:    validator.New(),
		logger:      slog.Default(),
		maxRetries:  3,
		baseBackoff: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the backend root URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// UploadProduct posts the product form and its files to /upload-product.
func (c *HTTPClient) UploadProduct(ctx context.Context, req UploadProductRequest) (*UploadProductResponse, error) {
	form := newMultipartForm()
	form.field("name", req.Name)
	form.optionalField("description", req.Description)
	for _, p := range req.ImagePaths {
		form.file("images", p)
	}
	form.optionalFile("video", req.VideoPath)
	form.optionalFile("voice", req.VoicePath)

	var resp UploadProductResponse
	if err := c.postMultipart(ctx, PathUploadProduct, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateScript posts the script form to /script.
func (c *HTTPClient) GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResponse, error) {
	form := newMultipartForm()
	form.optionalField("prompt", req.Prompt)
	form.optionalFile("image", req.ImagePath)
	form.optionalFile("video", req.VideoPath)
	form.optionalField("session_id", req.SessionID)
	form.field("script_format", req.ScriptFormat)
	form.field("creative_strategy", req.CreativeStrategy)
	form.field("execution_style", req.ExecutionStyle)

	var resp ScriptResponse
	if err := c.postMultipart(ctx, PathScript, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateVoice posts the script and voice to /voice.
func (c *HTTPClient) GenerateVoice(ctx context.Context, req VoiceRequest) (*VoiceResponse, error) {
	var resp VoiceResponse
	if err := c.postJSON(ctx, PathVoice, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateOptimizedImage posts a reviewed prompt to /image/optimized.
func (c *HTTPClient) GenerateOptimizedImage(ctx context.Context, req OptimizedImageRequest) (*OptimizedImageResponse, error) {
	var resp OptimizedImageResponse
	if err := c.postJSON(ctx, PathImageOptimized, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateImage posts a prompt to /image.
func (c *HTTPClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	var resp ImageResponse
	if err := c.postJSON(ctx, PathImage, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAvatars fetches the avatar catalog. Entries without an ID are dropped.
func (c *HTTPClient) ListAvatars(ctx context.Context) ([]AvatarOption, error) {
	var resp avatarsResponse
	if err := c.getWithRetry(ctx, PathAvatars, &resp); err != nil {
		return nil, err
	}
	out := make([]AvatarOption, 0, len(resp.Avatars))
	for _, a := range resp.Avatars {
		if a.ID != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListVoices fetches the avatar voice catalog. Entries without an ID are dropped.
func (c *HTTPClient) ListVoices(ctx context.Context) ([]VoiceOption, error) {
	var resp voicesResponse
	if err := c.getWithRetry(ctx, PathVideoVoices, &resp); err != nil {
		return nil, err
	}
	out := make([]VoiceOption, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		if v.ID != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// GenerateVideo posts the narration and selections to /video/generate.
func (c *HTTPClient) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoResponse, error) {
	if req.VideoFormat == "" {
		req.VideoFormat = DefaultVideoFormat
	}
	var resp VideoResponse
	if err := c.postJSON(ctx, PathVideoGenerate, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, result any) error {
	if err := c.validate.Struct(body); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", func() io.Reader { return bytes.NewReader(payload) }, result)
}

func (c *HTTPClient) postMultipart(ctx context.Context, path string, form *multipartForm, result any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, contentType, func() io.Reader { return bytes.NewReader(body) }, result)
}

// getWithRetry performs an idempotent GET with exponential backoff retry.
func (c *HTTPClient) getWithRetry(ctx context.Context, path string, result any) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("api: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.do(ctx, http.MethodGet, path, "", nil, result)
		if err == nil {
			return nil
		}
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		lastErr = err
		c.logger.Warn("retrying backend request",
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
	}

	return fmt.Errorf("api: max retries exceeded: %w", lastErr)
}

// do performs a single HTTP request and decodes a 2xx JSON body into result.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body func() io.Reader, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = body()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: fmt.Errorf("api: read response: %w", err)}
	}

	c.logger.Debug("backend request",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, path, err)
	}
	if err := c.validate.Struct(result); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, path, err)
	}
	return nil
}

// transportError wraps failures where no HTTP response was received.
// The message is the underlying error's, unchanged.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// IsTransport reports whether err is a network failure rather than a
// backend answer.
func IsTransport(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// isRetryable returns true for transport failures, 5xx and 429 answers.
func isRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode >= 500 || be.StatusCode == http.StatusTooManyRequests
	}
	var te *transportError
	return errors.As(err, &te)
}

// multipartForm collects fields and file references, deferring I/O errors
// until encode so call sites stay linear.
type multipartForm struct {
	parts []formPart
}

type formPart struct {
	name  string
	value string
	path  string
}

func newMultipartForm() *multipartForm {
	return &multipartForm{}
}

func (f *multipartForm) field(name, value string) {
	f.parts = append(f.parts, formPart{name: name, value: value})
}

func (f *multipartForm) optionalField(name, value string) {
	if value != "" {
		f.field(name, value)
	}
}

func (f *multipartForm) file(name, path string) {
	f.parts = append(f.parts, formPart{name: name, path: path})
}

func (f *multipartForm) optionalFile(name, path string) {
	if path != "" {
		f.file(name, path)
	}
}

func (f *multipartForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.path == "" {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("api: write field %s: %w", p.name, err)
			}
			continue
		}
		if err := writeFilePart(w, p.name, p.path); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field, path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("api: detect %s type: %w", field, err)
	}

	f, err := os.Open(path) // #nosec G304 - path is chosen by the local user
	if err != nil {
		return fmt.Errorf("api: open %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition(field, filepath.Base(path)))
	h.Set("Content-Type", mtype.String())

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("api: create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("api: copy %s: %w", field, err)
	}
	return nil
}
