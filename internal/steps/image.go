package steps

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// DefaultImageQuality is sent when no quality is chosen.
const DefaultImageQuality = "standard"

// ImageQualities are the accepted render qualities.
var ImageQualities = Options{
	{Value: "standard", Label: "Standard"},
	{Value: "hd", Label: "HD"},
}

var narratorLine = regexp.MustCompile(`(?i)Narrator:\s*"([^"]+)"`)

// ImageOptions are the visual choices shared by both image phases.
// Empty fields select the first preset.
type ImageOptions struct {
	Style string
	Tone  string
	Size  string
}

func (o ImageOptions) resolve() (ImageOptions, error) {
	var err error
	if o.Style, err = ImageStyles.resolveStrict("style", o.Style); err != nil {
		return o, err
	}
	if o.Tone, err = ImageTones.resolveStrict("tone", o.Tone); err != nil {
		return o, err
	}
	if o.Size, err = ImageSizes.resolveStrict("size", o.Size); err != nil {
		return o, err
	}
	return o, nil
}

// PromptDraft is the locally composed image prompt offered for editing.
type PromptDraft struct {
	// RawUserInput combines product and script for reference.
	RawUserInput string
	// Prompt is the suggested one-line image prompt.
	Prompt string
	ImageOptions
}

// RenderMode picks the image endpoint.
type RenderMode int

const (
	// RenderOptimized posts the edited prompt to /image/optimized.
	RenderOptimized RenderMode = iota
	// RenderDirect posts the edited prompt to /image as-is.
	RenderDirect
)

// RenderOptions configure phase B.
type RenderOptions struct {
	ImageOptions
	Quality string
	Mode    RenderMode
}

// ImageScreen drafts an image prompt and renders the image.
type ImageScreen struct {
	*screen

	draft  *PromptDraft
	result *session.Image
}

// NewImageScreen mounts the image screen.
func NewImageScreen(ctx context.Context, deps Deps) (*ImageScreen, error) {
	s, err := mount(ctx, "image", deps)
	if err != nil {
		return nil, err
	}
	return &ImageScreen{screen: s}, nil
}

// DraftPrompt composes the suggested prompt from the stored product and
// script. No request is made.
func (s *ImageScreen) DraftPrompt(opts ImageOptions) (*PromptDraft, error) {
	s.mu.Lock()
	s.draft = nil
	s.err = nil
	s.mu.Unlock()

	script, err := s.requireScript(messageNoScript)
	if err != nil {
		return nil, s.fail(err)
	}
	resolved, err := opts.resolve()
	if err != nil {
		return nil, s.fail(err)
	}

	product := s.Snapshot().Product
	draft := &PromptDraft{
		RawUserInput: rawUserInput(product, script.Script),
		Prompt:       ComposePrompt(product.Name(), product.Description(), script.Script),
		ImageOptions: resolved,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return nil, ErrViewClosed
	}
	s.draft = draft
	return draft, nil
}

// Draft returns the last composed draft, if any.
func (s *ImageScreen) Draft() *PromptDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Render sends editedPrompt for image generation and persists the result.
func (s *ImageScreen) Render(ctx context.Context, editedPrompt string, opts RenderOptions) (*session.Image, error) {
	if _, err := s.requireScript(messageNoScript); err != nil {
		return nil, s.fail(err)
	}
	if strings.TrimSpace(editedPrompt) == "" {
		return nil, s.fail(invalid("prompt", "Please generate and review the prompt first"))
	}
	resolved, err := opts.ImageOptions.resolve()
	if err != nil {
		return nil, s.fail(err)
	}
	quality, err := ImageQualities.resolveStrict("quality", opts.Quality)
	if err != nil {
		return nil, s.fail(err)
	}

	o, err := s.begin(ctx, func() { s.result = nil })
	if err != nil {
		return nil, err
	}

	var rec session.Image
	switch opts.Mode {
	case RenderDirect:
		resp, err := s.client.GenerateImage(o.ctx, api.ImageRequest{
			Prompt:  editedPrompt,
			Size:    resolved.Size,
			Quality: quality,
		})
		if err != nil {
			return nil, o.end(err)
		}
		rec = session.Image{OptimizedPrompt: editedPrompt, ImageData: resp.ImageURL}
	default:
		resp, err := s.client.GenerateOptimizedImage(o.ctx, api.OptimizedImageRequest{
			UserInput: editedPrompt,
			Style:     resolved.Style,
			Tone:      resolved.Tone,
			Size:      resolved.Size,
			Quality:   quality,
		})
		if err != nil {
			return nil, o.end(err)
		}
		rec = session.Image{OptimizedPrompt: resp.OptimizedPrompt, ImageData: resp.ImageData}
		if rec.OptimizedPrompt == "" {
			rec.OptimizedPrompt = editedPrompt
		}
	}

	err = o.commit(func() error {
		if err := s.session.SaveImage(o.ctx, rec); err != nil {
			return err
		}
		s.result = &rec
		s.snap.Image = &rec
		return nil
	})
	if err != nil {
		return nil, o.end(err)
	}
	return &rec, o.end(nil)
}

// Result returns the image rendered by this screen, if any.
func (s *ImageScreen) Result() *session.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// CanContinue reports whether a draft or an image exists. The step may
// also be skipped outright.
func (s *ImageScreen) CanContinue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil || s.draft != nil
}

// ComposePrompt builds the one-line image prompt for a product and script.
func ComposePrompt(name, description, script string) string {
	if strings.TrimSpace(name) == "" {
		name = "the product"
	}
	benefit := description
	if strings.TrimSpace(benefit) == "" {
		benefit = "the product's main benefit"
	}
	return fmt.Sprintf("A professional, eye-catching image of %s that visually represents: '%s'. "+
		"Emphasize %s in a way that evokes excitement and trust.", name, ScriptExtract(script), benefit)
}

// ScriptExtract returns the first quoted narrator line of script, or its
// first non-blank line.
func ScriptExtract(script string) string {
	if m := narratorLine.FindStringSubmatch(script); m != nil {
		return m[1]
	}
	for _, line := range strings.Split(script, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func rawUserInput(product *session.Product, script string) string {
	name := product.Name()
	if name == "" {
		name = "Unknown Product"
	}
	var desc string
	if d := product.Description(); d != "" {
		desc = "Description: " + d
	}
	return fmt.Sprintf("Product: %s\n%s\nScript: %s", name, desc, script)
}
