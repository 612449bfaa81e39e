package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// ProductInfo is the product name and description as submitted.
type ProductInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProductAssets lists the backend-side filenames of uploaded assets.
type ProductAssets struct {
	Images []string `json:"images"`
	Video  string   `json:"video,omitempty"`
	Voice  string   `json:"voice,omitempty"`
}

// Product is the persisted result of the product upload step.
type Product struct {
	SessionID string        `json:"session_id"`
	Product   *ProductInfo  `json:"product,omitempty"`
	Assets    ProductAssets `json:"assets"`
}

// Name returns the product name, or "" when unknown.
func (p *Product) Name() string {
	if p == nil || p.Product == nil {
		return ""
	}
	return p.Product.Name
}

// Description returns the product description, or "" when unknown.
func (p *Product) Description() string {
	if p == nil || p.Product == nil {
		return ""
	}
	return p.Product.Description
}

// Script is the persisted result of the script step.
type Script struct {
	SessionID    string `json:"session_id"`
	Script       string `json:"script"`
	ImageCaption string `json:"image_caption,omitempty"`
	VideoCaption string `json:"video_caption,omitempty"`
}

// Voice is the persisted result of the voice step.
type Voice struct {
	VoiceText   string `json:"voice_text"`
	AudioBase64 string `json:"audio_base64"`
}

// AudioDataURI renders the audio as a playable data URI.
func (v *Voice) AudioDataURI() string {
	if v == nil || v.AudioBase64 == "" {
		return ""
	}
	return "data:audio/mpeg;base64," + v.AudioBase64
}

// Image is the persisted result of the image step.
type Image struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	ImageData       string `json:"image_data"`
}

// AvatarVideo is the persisted result of the avatar video step.
type AvatarVideo struct {
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	AvatarID string `json:"avatar_id"`
	VoiceID  string `json:"voice_id"`
}

// Snapshot is a point-in-time read of every record. Screens take one when
// they mount and do not see later writes.
type Snapshot struct {
	SessionID   string
	Product     *Product
	Script      *Script
	Voice       *Voice
	Image       *Image
	AvatarVideo *AvatarVideo
}

// Has reports whether the record for key is present.
func (s Snapshot) Has(key Key) bool {
	switch key {
	case KeySessionID:
		return s.SessionID != ""
	case KeyProduct:
		return s.Product != nil
	case KeyScript:
		return s.Script != nil
	case KeyVoice:
		return s.Voice != nil
	case KeyImage:
		return s.Image != nil
	case KeyAvatarVideo:
		return s.AvatarVideo != nil
	default:
		return false
	}
}

// Narration returns the text to speak: the voice-cleaned text when present,
// otherwise the raw script.
func (s Snapshot) Narration() string {
	if s.Voice != nil && strings.TrimSpace(s.Voice.VoiceText) != "" {
		return s.Voice.VoiceText
	}
	if s.Script != nil {
		return s.Script.Script
	}
	return ""
}

// Session is the typed facade over a Store.
type Session struct {
	store  Store
	logger *slog.Logger
}

// New wraps store. A nil logger falls back to slog.Default().
func New(store Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, logger: logger}
}

// Store returns the underlying store.
func (s *Session) Store() Store {
	return s.store
}

// Snapshot reads every record. Corrupt values are logged and reported as
// absent; only store I/O failures are returned as errors.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.SessionID, err = loadValue[string](ctx, s, KeySessionID); err != nil {
		return Snapshot{}, err
	}
	if snap.Product, err = load[Product](ctx, s, KeyProduct); err != nil {
		return Snapshot{}, err
	}
	if snap.Script, err = load[Script](ctx, s, KeyScript); err != nil {
		return Snapshot{}, err
	}
	if snap.Voice, err = load[Voice](ctx, s, KeyVoice); err != nil {
		return Snapshot{}, err
	}
	if snap.Image, err = load[Image](ctx, s, KeyImage); err != nil {
		return Snapshot{}, err
	}
	if snap.AvatarVideo, err = load[AvatarVideo](ctx, s, KeyAvatarVideo); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveProduct stores the product record and its session ID.
func (s *Session) SaveProduct(ctx context.Context, p Product) error {
	if err := s.save(ctx, KeySessionID, p.SessionID); err != nil {
		return err
	}
	return s.save(ctx, KeyProduct, p)
}

// SaveSessionID stores the backend session ID.
func (s *Session) SaveSessionID(ctx context.Context, id string) error {
	return s.save(ctx, KeySessionID, id)
}

// SaveScript stores the script record.
func (s *Session) SaveScript(ctx context.Context, v Script) error {
	return s.save(ctx, KeyScript, v)
}

// SaveVoice stores the voice record.
func (s *Session) SaveVoice(ctx context.Context, v Voice) error {
	return s.save(ctx, KeyVoice, v)
}

// SaveImage stores the image record.
func (s *Session) SaveImage(ctx context.Context, v Image) error {
	return s.save(ctx, KeyImage, v)
}

// SaveAvatarVideo stores the avatar video record.
func (s *Session) SaveAvatarVideo(ctx context.Context, v AvatarVideo) error {
	return s.save(ctx, KeyAvatarVideo, v)
}

// Clear deletes every recognized key.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, AllKeys...); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}

func (s *Session) save(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("session: store %s: %w", key, err)
	}
	s.logger.Debug("session record saved", slog.String("key", string(key)))
	return nil
}

func load[T any](ctx context.Context, s *Session, key Key) (*T, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	var v *T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.Warn("ignoring corrupt session record",
			slog.String("key", string(key)),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	// null, {} and "" carry no record.
	if v == nil || reflect.ValueOf(*v).IsZero() {
		s.logger.Warn("ignoring empty session record", slog.String("key", string(key)))
		return nil, nil
	}
	return v, nil
}

func loadValue[T any](ctx context.Context, s *Session, key Key) (T, error) {
	var zero T
	v, err := load[T](ctx, s, key)
	if err != nil || v == nil {
		return zero, err
	}
	return *v, nil
}
