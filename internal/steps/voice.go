package steps

import (
	"context"
	"strings"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// VoiceScreen synthesizes the voiceover for the stored script.
type VoiceScreen struct {
	*screen
}

// NewVoiceScreen mounts the voice screen. A stored voice result is shown
// again without calling the backend.
func NewVoiceScreen(ctx context.Context, deps Deps) (*VoiceScreen, error) {
	s, err := mount(ctx, "voice", deps)
	if err != nil {
		return nil, err
	}
	return &VoiceScreen{screen: s}, nil
}

// ResolveVoiceID maps a preset value or a custom ID to the ID to send.
// CustomOption requires custom to be non-blank.
func ResolveVoiceID(choice, custom string) (string, error) {
	choice = strings.TrimSpace(choice)
	if choice != "" && choice != CustomOption {
		// Unlisted IDs are accepted as custom voices.
		return choice, nil
	}
	return VoicePresets.resolve("voice_id", choice, custom)
}

// Synthesize turns the stored script into speech with voiceID.
func (s *VoiceScreen) Synthesize(ctx context.Context, voiceID string) (*session.Voice, error) {
	script, err := s.requireScript("No script available. Please generate a script first.")
	if err != nil {
		return nil, s.fail(err)
	}
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return nil, s.fail(invalid("voice_id", "Please choose a voice"))
	}

	o, err := s.begin(ctx, func() { s.snap.Voice = nil })
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GenerateVoice(o.ctx, api.VoiceRequest{
		Script:  script.Script,
		VoiceID: voiceID,
	})
	if err != nil {
		return nil, o.end(err)
	}

	rec := session.Voice{VoiceText: resp.VoiceText, AudioBase64: resp.AudioBase64}
	err = o.commit(func() error {
		if err := s.session.SaveVoice(o.ctx, rec); err != nil {
			return err
		}
		s.snap.Voice = &rec
		return nil
	})
	if err != nil {
		return nil, o.end(err)
	}
	return &rec, o.end(nil)
}

// Result returns the voice shown on this screen: the stored one read at
// mount, or the one synthesized since.
func (s *VoiceScreen) Result() *session.Voice {
	return s.Snapshot().Voice
}

// CanContinue reports whether voice text is available.
func (s *VoiceScreen) CanContinue() bool {
	r := s.Result()
	return r != nil && r.VoiceText != ""
}
