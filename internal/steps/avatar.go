package steps

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// Empty catalog hints.
const (
	HintNoAvatars = "No avatars available. Please check your HeyGen API key."
	HintNoVoices  = "No voices available. Please check your HeyGen API key."
)

// AvatarForm selects the avatar and voice. Empty fields use the current
// selection.
type AvatarForm struct {
	AvatarID string
	VoiceID  string
}

// AvatarScreen loads the avatar and voice catalogs and generates the video.
type AvatarScreen struct {
	*screen

	avatars        []api.AvatarOption
	avatarsLoading bool
	avatarsLoaded  bool
	avatarsErr     error
	avatarID       string

	voices        []api.VoiceOption
	voicesLoading bool
	voicesLoaded  bool
	voicesErr     error
	voiceID       string

	attempt Attempt
}

// NewAvatarScreen mounts the avatar screen. Call LoadCatalogs to fetch the
// avatar and voice lists.
func NewAvatarScreen(ctx context.Context, deps Deps) (*AvatarScreen, error) {
	s, err := mount(ctx, "avatar", deps)
	if err != nil {
		return nil, err
	}
	return &AvatarScreen{screen: s, attempt: Attempt{Status: AttemptIdle}}, nil
}

// LoadCatalogs fetches both catalogs concurrently. Each keeps its own
// loading flag and error; the returned error joins both.
func (s *AvatarScreen) LoadCatalogs(ctx context.Context) error {
	var (
		wg                   sync.WaitGroup
		avatarsErr, voiceErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, avatarsErr = s.LoadAvatars(ctx)
	}()
	go func() {
		defer wg.Done()
		_, voiceErr = s.LoadVoices(ctx)
	}()
	wg.Wait()
	return errors.Join(avatarsErr, voiceErr)
}

// LoadAvatars fetches the avatar catalog and selects its first entry.
func (s *AvatarScreen) LoadAvatars(ctx context.Context) ([]api.AvatarOption, error) {
	o, err := s.beginWith(ctx, &s.avatarsLoading, &s.avatarsErr, nil)
	if err != nil {
		return nil, err
	}
	list, err := s.client.ListAvatars(o.ctx)
	if err != nil {
		return nil, o.end(err)
	}
	err = o.commit(func() error {
		s.avatars = list
		s.avatarsLoaded = true
		if len(list) > 0 {
			s.avatarID = list[0].ID
		}
		return nil
	})
	return list, o.end(err)
}

// LoadVoices fetches the avatar voice catalog and selects its first entry.
func (s *AvatarScreen) LoadVoices(ctx context.Context) ([]api.VoiceOption, error) {
	o, err := s.beginWith(ctx, &s.voicesLoading, &s.voicesErr, nil)
	if err != nil {
		return nil, err
	}
	list, err := s.client.ListVoices(o.ctx)
	if err != nil {
		return nil, o.end(err)
	}
	err = o.commit(func() error {
		s.voices = list
		s.voicesLoaded = true
		if len(list) > 0 {
			s.voiceID = list[0].ID
		}
		return nil
	})
	return list, o.end(err)
}

// Catalogs is the view state of both lists.
type Catalogs struct {
	Avatars        []api.AvatarOption
	AvatarsLoading bool
	AvatarsErr     error
	AvatarID       string
	AvatarsHint    string

	Voices        []api.VoiceOption
	VoicesLoading bool
	VoicesErr     error
	VoiceID       string
	VoicesHint    string
}

// Catalogs returns the current catalog state. Hints are set once a load has
// finished with an empty or failed result.
func (s *AvatarScreen) Catalogs() Catalogs {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Catalogs{
		Avatars:        s.avatars,
		AvatarsLoading: s.avatarsLoading,
		AvatarsErr:     s.avatarsErr,
		AvatarID:       s.avatarID,
		Voices:         s.voices,
		VoicesLoading:  s.voicesLoading,
		VoicesErr:      s.voicesErr,
		VoiceID:        s.voiceID,
	}
	if !s.avatarsLoading && (s.avatarsLoaded || s.avatarsErr != nil) && len(s.avatars) == 0 {
		c.AvatarsHint = HintNoAvatars
	}
	if !s.voicesLoading && (s.voicesLoaded || s.voicesErr != nil) && len(s.voices) == 0 {
		c.VoicesHint = HintNoVoices
	}
	return c
}

// Select changes the avatar and voice. Empty values leave a choice as is.
func (s *AvatarScreen) Select(avatarID, voiceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if avatarID = strings.TrimSpace(avatarID); avatarID != "" {
		s.avatarID = avatarID
	}
	if voiceID = strings.TrimSpace(voiceID); voiceID != "" {
		s.voiceID = voiceID
	}
}

// CanGenerate reports whether the generate action is enabled.
func (s *AvatarScreen) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loading && !s.avatarsLoading && !s.voicesLoading &&
		s.avatarID != "" && s.voiceID != ""
}

// Attempt returns the latest generation attempt.
func (s *AvatarScreen) Attempt() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Ready returns the missing prerequisite as a PrerequisiteError, or nil.
// It never calls the backend, so callers check it before LoadCatalogs.
func (s *AvatarScreen) Ready() error {
	if _, err := s.requireScript(messageNoScript); err != nil {
		return s.fail(err)
	}
	return nil
}

// Generate requests the avatar video. A completed video is persisted; any
// other backend status is reported through the returned Attempt and is
// not an error.
func (s *AvatarScreen) Generate(ctx context.Context, form AvatarForm) (Attempt, error) {
	s.Select(form.AvatarID, form.VoiceID)

	if err := s.Ready(); err != nil {
		return s.Attempt(), err
	}
	narration := s.Snapshot().Narration()
	if strings.TrimSpace(narration) == "" {
		return s.Attempt(), s.fail(invalid("script",
			"No voiceover text available. Please generate audio first or use the script."))
	}

	s.mu.Lock()
	avatarID, voiceID := s.avatarID, s.voiceID
	catalogsBusy := s.avatarsLoading || s.voicesLoading
	s.mu.Unlock()
	if catalogsBusy {
		return s.Attempt(), ErrBusy
	}
	if avatarID == "" || voiceID == "" {
		return s.Attempt(), s.fail(invalid("avatar_id", "Please select an avatar and a voice"))
	}

	var startErr error
	o, err := s.begin(ctx, func() { startErr = s.attempt.start(s.now()) })
	if err != nil {
		return s.Attempt(), err
	}
	if startErr != nil {
		return s.Attempt(), o.end(startErr)
	}

	resp, err := s.client.GenerateVideo(o.ctx, api.VideoRequest{
		Script:      narration,
		AvatarID:    avatarID,
		VoiceID:     voiceID,
		VideoFormat: api.DefaultVideoFormat,
	})
	if err != nil {
		s.settle(func(a *Attempt) error { return a.fail(s.now()) })
		err = o.end(err)
		s.abandonIfClosed()
		return s.Attempt(), err
	}

	err = o.commit(func() error {
		if resp.Completed() {
			rec := session.AvatarVideo{
				Status:   resp.Status,
				VideoURL: resp.VideoURL,
				AvatarID: avatarID,
				VoiceID:  voiceID,
			}
			if err := s.session.SaveAvatarVideo(o.ctx, rec); err != nil {
				return err
			}
			s.snap.AvatarVideo = &rec
		}
		return s.attempt.resolve(resp.Status, resp.VideoURL, resp.Completed(), s.now())
	})
	if err != nil && !errors.Is(err, ErrViewClosed) {
		s.settle(func(a *Attempt) error { return a.fail(s.now()) })
	}
	err = o.end(err)
	s.abandonIfClosed()
	return s.Attempt(), err
}

// settle applies fn to the attempt under the screen lock.
func (s *AvatarScreen) settle(fn func(*Attempt) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if err := fn(&s.attempt); err != nil {
		s.logger.Warn("attempt transition rejected", slog.String("error", err.Error()))
	}
}

// abandonIfClosed returns an interrupted attempt to idle.
func (s *AvatarScreen) abandonIfClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil && s.attempt.Status == AttemptRequesting {
		_ = s.attempt.abandon(s.now())
	}
}

// Result returns the completed video generated on this screen, if any.
func (s *AvatarScreen) Result() *session.AvatarVideo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt.Status != AttemptCompleted {
		return nil
	}
	return s.snap.AvatarVideo
}

// CanContinue reports whether this screen produced a video.
func (s *AvatarScreen) CanContinue() bool {
	a := s.Attempt()
	return a.Status == AttemptCompleted && a.VideoURL != ""
}
