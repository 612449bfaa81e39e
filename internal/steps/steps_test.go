package steps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// mockClient is a testify mock of api.Client.
type mockClient struct {
	mock.Mock
}

var _ api.Client = (*mockClient)(nil)

func (m *mockClient) UploadProduct(ctx context.Context, req api.UploadProductRequest) (*api.UploadProductResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.UploadProductResponse)
	return resp, args.Error(1)
}

func (m *mockClient) GenerateScript(ctx context.Context, req api.ScriptRequest) (*api.ScriptResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.ScriptResponse)
	return resp, args.Error(1)
}

func (m *mockClient) GenerateVoice(ctx context.Context, req api.VoiceRequest) (*api.VoiceResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.VoiceResponse)
	return resp, args.Error(1)
}

func (m *mockClient) GenerateOptimizedImage(ctx context.Context, req api.OptimizedImageRequest) (*api.OptimizedImageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.OptimizedImageResponse)
	return resp, args.Error(1)
}

func (m *mockClient) GenerateImage(ctx context.Context, req api.ImageRequest) (*api.ImageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.ImageResponse)
	return resp, args.Error(1)
}

func (m *mockClient) ListAvatars(ctx context.Context) ([]api.AvatarOption, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]api.AvatarOption)
	return list, args.Error(1)
}

func (m *mockClient) ListVoices(ctx context.Context) ([]api.VoiceOption, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]api.VoiceOption)
	return list, args.Error(1)
}

func (m *mockClient) GenerateVideo(ctx context.Context, req api.VideoRequest) (*api.VideoResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*api.VideoResponse)
	return resp, args.Error(1)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fixture bundles a mock client with an in-memory session.
type fixture struct {
	client *mockClient
	store  *session.MemoryStore
	sess   *session.Session
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := session.NewMemoryStore()
	f := &fixture{
		client: &mockClient{},
		store:  store,
		sess:   session.New(store, nil),
		now:    testNow,
	}
	t.Cleanup(func() { f.client.AssertExpectations(t) })
	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Client:  f.client,
		Session: f.sess,
		Now:     func() time.Time { return f.now },
	}
}

func (f *fixture) snapshot(t *testing.T) session.Snapshot {
	t.Helper()
	snap, err := f.sess.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func (f *fixture) seedScript(t *testing.T, script string) {
	t.Helper()
	require.NoError(t, f.sess.SaveScript(context.Background(), session.Script{SessionID: "sess-1", Script: script}))
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// writeFile writes data to name under a fresh temp dir.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
