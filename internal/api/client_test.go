package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for mimetype to sniff image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseBackoff(time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestNewClient_WithTimeout(t *testing.T) {
	a, err := NewClient("http://localhost:8000", WithTimeout(30*time.Second))
	require.NoError(t, err)
	b, err := NewClient("http://localhost:8000")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, a.httpClient.Timeout)
	assert.Equal(t, 5*time.Minute, b.httpClient.Timeout)
	assert.NotSame(t, a.httpClient, b.httpClient)
}

func TestHTTPClient_UploadProduct(t *testing.T) {
	imagePath := writeFixture(t, "widget.png", pngHeader)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathUploadProduct, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Widget X", r.FormValue("name"))
		assert.Equal(t, "Cleans anything", r.FormValue("description"))
		_, hasVideo := r.MultipartForm.File["video"]
		assert.False(t, hasVideo)

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		assert.Equal(t, "widget.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"session_id":"sess-1","product":{"name":"Widget X"},"assets":{"images":["sess-1_image_0_widget.png"]}}`)
	})

	resp, err := c.UploadProduct(context.Background(), UploadProductRequest{
		Name:        "Widget X",
		Description: "Cleans anything",
		ImagePaths:  []string{imagePath, imagePath},
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
	require.NotNil(t, resp.Product)
	assert.Equal(t, "Widget X", resp.Product.Name)
	assert.Equal(t, []string{"sess-1_image_0_widget.png"}, resp.Assets.Images)
}

func TestHTTPClient_UploadProduct_MissingFile(t *testing.T) {
	var called atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})

	_, err := c.UploadProduct(context.Background(), UploadProductRequest{
		Name:      "Widget",
		VideoPath: filepath.Join(t.TempDir(), "nope.mp4"),
	})
	require.Error(t, err)
	assert.False(t, called.Load(), "no request should be sent when a file cannot be read")
}

func TestHTTPClient_UploadProduct_MissingSessionID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"assets":{"images":[]}}`)
	})

	_, err := c.UploadProduct(context.Background(), UploadProductRequest{Name: "Widget"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHTTPClient_GenerateScript(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathScript, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "sess-1", r.FormValue("session_id"))
		assert.Equal(t, "30-second", r.FormValue("script_format"))
		assert.Equal(t, "usp", r.FormValue("creative_strategy"))
		assert.Equal(t, "demo", r.FormValue("execution_style"))
		_, hasPrompt := r.MultipartForm.Value["prompt"]
		assert.False(t, hasPrompt)

		_, _ = io.WriteString(w, `{"session_id":"sess-1","script":"Narrator: \"Buy it\"","image_caption":"a widget"}`)
	})

	resp, err := c.GenerateScript(context.Background(), ScriptRequest{
		SessionID:        "sess-1",
		ScriptFormat:     "30-second",
		CreativeStrategy: "usp",
		ExecutionStyle:   "demo",
	})
	require.NoError(t, err)
	assert.Equal(t, `Narrator: "Buy it"`, resp.Script)
	assert.Equal(t, "a widget", resp.ImageCaption)
}

func TestHTTPClient_GenerateVoice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req VoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "the script", req.Script)
		assert.Equal(t, "voice-1", req.VoiceID)

		_, _ = io.WriteString(w, `{"voice_text":"spoken","audio_base64":"aGVsbG8="}`)
	})

	resp, err := c.GenerateVoice(context.Background(), VoiceRequest{Script: "the script", VoiceID: "voice-1"})
	require.NoError(t, err)
	assert.Equal(t, "spoken", resp.VoiceText)
	assert.Equal(t, "aGVsbG8=", resp.AudioBase64)
}

func TestHTTPClient_GenerateVoice_InvalidRequest(t *testing.T) {
	var called atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})

	_, err := c.GenerateVoice(context.Background(), VoiceRequest{VoiceID: "voice-1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.False(t, called.Load())
}

func TestHTTPClient_BackendErrorBodyVerbatim(t *testing.T) {
	const body = `{"detail":"OpenAI error: quota exceeded"}`
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, body)
	})

	_, err := c.GenerateOptimizedImage(context.Background(), OptimizedImageRequest{UserInput: "a widget"})
	require.Error(t, err)
	assert.EqualError(t, err, body)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Equal(t, int32(1), calls.Load(), "generation calls are never retried")

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.StatusCode)
}

func TestHTTPClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.GenerateImage(context.Background(), ImageRequest{Prompt: "a widget"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "connect")
}

func TestHTTPClient_ListAvatars_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathAvatars, r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"avatars":[{"avatar_id":"a1","name":"Anna"},{"name":"no id"},{"avatar_id":"a2"}]}`)
	})

	avatars, err := c.ListAvatars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, avatars, 2)
	assert.Equal(t, "Anna", avatars[0].Label())
	assert.Equal(t, "a2", avatars[1].Label())
}

func TestHTTPClient_ListVoices_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "missing HeyGen API key")
	})

	_, err := c.ListVoices(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "missing HeyGen API key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_ListVoices_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithMaxRetries(2))

	_, err := c.ListVoices(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_GenerateVideo(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		completed bool
	}{
		{name: "completed", response: `{"status":"completed","video_url":"https://cdn/v.mp4","avatar_id":"a1","voice_id":"v1"}`, completed: true},
		{name: "processing", response: `{"status":"processing","avatar_id":"a1","voice_id":"v1"}`, completed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var req VideoRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, DefaultVideoFormat, req.VideoFormat)
				_, _ = io.WriteString(w, tt.response)
			})

			resp, err := c.GenerateVideo(context.Background(), VideoRequest{Script: "hi", AvatarID: "a1", VoiceID: "v1"})
			require.NoError(t, err)
			assert.Equal(t, tt.completed, resp.Completed())
		})
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})

	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateVoice(ctx, VoiceRequest{Script: "s", VoiceID: "v"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
