package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

func TestScriptExtract(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "narrator quote", script: "[Scene 1]\nNarrator: \"Clean in seconds.\"\nCut.", want: "Clean in seconds."},
		{name: "case insensitive", script: `NARRATOR:   "Loud and clear"`, want: "Loud and clear"},
		{name: "first non-blank line", script: "\n   \n  Opening shot of the kitchen  \nNext", want: "Opening shot of the kitchen"},
		{name: "empty", script: "  \n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScriptExtract(tt.script))
		})
	}
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t,
		"A professional, eye-catching image of Widget X that visually represents: 'Clean in seconds.'. "+
			"Emphasize Cleans anything in a way that evokes excitement and trust.",
		ComposePrompt("Widget X", "Cleans anything", `Narrator: "Clean in seconds."`))

	assert.Equal(t,
		"A professional, eye-catching image of the product that visually represents: 'Buy now'. "+
			"Emphasize the product's main benefit in a way that evokes excitement and trust.",
		ComposePrompt("", "", "Buy now"))
}

func TestImageScreen_DraftRequiresScript(t *testing.T) {
	f := newFixture(t)
	s, err := NewImageScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = s.DraftPrompt(ImageOptions{})
	require.ErrorIs(t, err, ErrPrerequisiteMissing)
	assert.Equal(t, "Please generate a script first", err.Error())
	assert.False(t, s.CanContinue())

	_, err = s.Render(context.Background(), "a prompt", RenderOptions{})
	require.ErrorIs(t, err, ErrPrerequisiteMissing)
	f.client.AssertNotCalled(t, "GenerateOptimizedImage", mock.Anything, mock.Anything)
}

func TestImageScreen_DraftPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sess.SaveProduct(ctx, session.Product{
		SessionID: "sess-1",
		Product:   &session.ProductInfo{Name: "Widget X", Description: "Cleans anything"},
	}))
	f.seedScript(t, `Narrator: "Clean in seconds."`)

	s, err := NewImageScreen(ctx, f.deps())
	require.NoError(t, err)

	draft, err := s.DraftPrompt(ImageOptions{Tone: "luxury"})
	require.NoError(t, err)
	assert.Contains(t, draft.Prompt, "image of Widget X")
	assert.Equal(t, "Product: Widget X\nDescription: Cleans anything\nScript: Narrator: \"Clean in seconds.\"", draft.RawUserInput)
	assert.Equal(t, ImageOptions{Style: "realistic", Tone: "luxury", Size: "1024x1024"}, draft.ImageOptions)
	assert.Equal(t, draft, s.Draft())
	assert.True(t, s.CanContinue())

	_, err = s.DraftPrompt(ImageOptions{Size: "640x480"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, s.Draft())
}

func TestImageScreen_RenderSendsEditedPrompt(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, "Buy it.")

	f.client.On("GenerateOptimizedImage", mock.Anything, api.OptimizedImageRequest{
		UserInput: "my edited prompt",
		Style:     "vintage",
		Tone:      "professional",
		Size:      "1792x1024",
		Quality:   "standard",
	}).Return(&api.OptimizedImageResponse{
		OptimizedPrompt: "refined prompt",
		ImageData:       "data:image/png;base64,iVBORw0KGgo=",
	}, nil).Once()

	s, err := NewImageScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = s.DraftPrompt(ImageOptions{})
	require.NoError(t, err)

	rec, err := s.Render(context.Background(), "my edited prompt", RenderOptions{
		ImageOptions: ImageOptions{Style: "vintage", Size: "1792x1024"},
	})
	require.NoError(t, err)
	assert.Equal(t, session.Image{OptimizedPrompt: "refined prompt", ImageData: "data:image/png;base64,iVBORw0KGgo="}, *rec)
	assert.Equal(t, rec, s.Result())
	assert.Equal(t, *rec, *f.snapshot(t).Image)
}

func TestImageScreen_RenderDirect(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, "Buy it.")

	f.client.On("GenerateImage", mock.Anything, api.ImageRequest{
		Prompt:  "plain prompt",
		Size:    "1024x1792",
		Quality: "hd",
	}).Return(&api.ImageResponse{ImageURL: "https://cdn.example.com/img.png"}, nil).Once()

	s, err := NewImageScreen(context.Background(), f.deps())
	require.NoError(t, err)

	rec, err := s.Render(context.Background(), "plain prompt", RenderOptions{
		ImageOptions: ImageOptions{Size: "1024x1792"},
		Quality:      "hd",
		Mode:         RenderDirect,
	})
	require.NoError(t, err)
	assert.Equal(t, session.Image{OptimizedPrompt: "plain prompt", ImageData: "https://cdn.example.com/img.png"}, *rec)
}

func TestImageScreen_RenderRejectsBlankPrompt(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, "Buy it.")

	s, err := NewImageScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = s.Render(context.Background(), "  \n", RenderOptions{})
	require.EqualError(t, err, "Please generate and review the prompt first")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	f.client.AssertNotCalled(t, "GenerateOptimizedImage", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
}
