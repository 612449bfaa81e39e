package steps

import (
	"context"
	"strings"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// ScriptForm is the script generation input. Format, Strategy and Style
// take a preset value or CustomOption with the matching Custom* text.
// Empty choices select the first preset.
type ScriptForm struct {
	Prompt    string
	ImagePath string `validate:"omitempty,file"`
	VideoPath string `validate:"omitempty,file"`

	Format         string
	CustomFormat   string
	Strategy       string
	CustomStrategy string
	Style          string
	CustomStyle    string
}

// ScriptScreen generates the ad script.
type ScriptScreen struct {
	*screen

	result *session.Script
}

// NewScriptScreen mounts the script screen.
func NewScriptScreen(ctx context.Context, deps Deps) (*ScriptScreen, error) {
	s, err := mount(ctx, "script", deps)
	if err != nil {
		return nil, err
	}
	return &ScriptScreen{screen: s}, nil
}

// SessionID returns the session ID read at mount, or "".
func (s *ScriptScreen) SessionID() string {
	return s.Snapshot().SessionID
}

// CanGenerate reports whether the generate action is enabled for form:
// a session must exist or an image or video must be attached.
func (s *ScriptScreen) CanGenerate(form ScriptForm) bool {
	return s.SessionID() != "" ||
		strings.TrimSpace(form.ImagePath) != "" ||
		strings.TrimSpace(form.VideoPath) != ""
}

// Generate sends the script request and persists the result. The first
// session ID seen is kept; a stored one is never replaced here.
func (s *ScriptScreen) Generate(ctx context.Context, form ScriptForm) (*session.Script, error) {
	req, err := s.request(form)
	if err != nil {
		return nil, s.fail(err)
	}

	o, err := s.begin(ctx, func() { s.result = nil })
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GenerateScript(o.ctx, req)
	if err != nil {
		return nil, o.end(err)
	}

	rec := session.Script{
		SessionID:    resp.SessionID,
		Script:       resp.Script,
		ImageCaption: resp.ImageCaption,
		VideoCaption: resp.VideoCaption,
	}
	err = o.commit(func() error {
		if err := s.session.SaveScript(o.ctx, rec); err != nil {
			return err
		}
		if s.snap.SessionID == "" && rec.SessionID != "" {
			if err := s.session.SaveSessionID(o.ctx, rec.SessionID); err != nil {
				return err
			}
			s.snap.SessionID = rec.SessionID
		}
		s.result = &rec
		s.snap.Script = &rec
		return nil
	})
	if err != nil {
		return nil, o.end(err)
	}
	return &rec, o.end(nil)
}

func (s *ScriptScreen) request(form ScriptForm) (api.ScriptRequest, error) {
	form.ImagePath = strings.TrimSpace(form.ImagePath)
	form.VideoPath = strings.TrimSpace(form.VideoPath)

	if !s.CanGenerate(form) {
		return api.ScriptRequest{}, invalid("session_id",
			"Upload a product first, or attach an image or video to generate a script")
	}
	if err := s.validate.Struct(form); err != nil {
		return api.ScriptRequest{}, validationError(err, nil)
	}
	if form.ImagePath != "" {
		if err := checkFileKind("ImagePath", form.ImagePath, "image/"); err != nil {
			return api.ScriptRequest{}, err
		}
	}
	if form.VideoPath != "" {
		if err := checkFileKind("VideoPath", form.VideoPath, "video/"); err != nil {
			return api.ScriptRequest{}, err
		}
	}

	format, err := ScriptFormats.resolve("script_format", form.Format, form.CustomFormat)
	if err != nil {
		return api.ScriptRequest{}, err
	}
	strategy, err := CreativeStrategies.resolve("creative_strategy", form.Strategy, form.CustomStrategy)
	if err != nil {
		return api.ScriptRequest{}, err
	}
	style, err := ExecutionStyles.resolve("execution_style", form.Style, form.CustomStyle)
	if err != nil {
		return api.ScriptRequest{}, err
	}

	return api.ScriptRequest{
		Prompt:           strings.TrimSpace(form.Prompt),
		ImagePath:        form.ImagePath,
		VideoPath:        form.VideoPath,
		SessionID:        s.SessionID(),
		ScriptFormat:     format,
		CreativeStrategy: strategy,
		ExecutionStyle:   style,
	}, nil
}

// Result returns the script generated by this screen, if any.
func (s *ScriptScreen) Result() *session.Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// CanContinue reports whether this screen produced a script.
func (s *ScriptScreen) CanContinue() bool {
	r := s.Result()
	return r != nil && r.Script != ""
}
