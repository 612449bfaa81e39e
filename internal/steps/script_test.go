package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

func TestScriptScreen_BlockedWithoutSessionOrFiles(t *testing.T) {
	f := newFixture(t)
	s, err := NewScriptScreen(context.Background(), f.deps())
	require.NoError(t, err)

	form := ScriptForm{Format: "30-second", Strategy: "usp", Style: "demo"}
	assert.False(t, s.CanGenerate(form))

	_, err = s.Generate(context.Background(), form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	f.client.AssertNotCalled(t, "GenerateScript", mock.Anything, mock.Anything)
	assert.False(t, f.snapshot(t).Has(session.KeyScript))
}

func TestScriptScreen_GenerateWithStoredSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.SaveSessionID(context.Background(), "sess-1"))

	f.client.On("GenerateScript", mock.Anything, api.ScriptRequest{
		Prompt:           "make it punchy",
		SessionID:        "sess-1",
		ScriptFormat:     "30-second",
		CreativeStrategy: "usp",
		ExecutionStyle:   "demo",
	}).Return(&api.ScriptResponse{
		SessionID: "sess-other",
		Script:    `Narrator: "Meet Widget X."`,
	}, nil).Once()

	s, err := NewScriptScreen(context.Background(), f.deps())
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.SessionID())

	rec, err := s.Generate(context.Background(), ScriptForm{
		Prompt:   " make it punchy ",
		Format:   "30-second",
		Strategy: "usp",
		Style:    "demo",
	})
	require.NoError(t, err)
	assert.Equal(t, `Narrator: "Meet Widget X."`, rec.Script)
	assert.True(t, s.CanContinue())

	snap := f.snapshot(t)
	require.NotNil(t, snap.Script)
	assert.Equal(t, *rec, *snap.Script)
	// A stored session ID is never replaced by a script response.
	assert.Equal(t, "sess-1", snap.SessionID)
}

func TestScriptScreen_FirstSessionIDIsPersisted(t *testing.T) {
	f := newFixture(t)
	img := writeFile(t, "shot.png", pngHeader)

	f.client.On("GenerateScript", mock.Anything, mock.MatchedBy(func(r api.ScriptRequest) bool {
		return r.ImagePath == img && r.SessionID == "" &&
			r.ScriptFormat == "15-second" && r.CreativeStrategy == "informational" && r.ExecutionStyle == "flashy"
	})).Return(&api.ScriptResponse{SessionID: "sess-new", Script: "Buy it."}, nil).Once()

	s, err := NewScriptScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), ScriptForm{ImagePath: img})
	require.NoError(t, err)
	assert.Equal(t, "sess-new", f.snapshot(t).SessionID)
}

func TestScriptScreen_CustomOptions(t *testing.T) {
	t.Run("custom text is sent", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sess.SaveSessionID(context.Background(), "sess-1"))
		f.client.On("GenerateScript", mock.Anything, mock.MatchedBy(func(r api.ScriptRequest) bool {
			return r.ScriptFormat == "45-second radio spot" && r.CreativeStrategy == "usp" && r.ExecutionStyle == "parody"
		})).Return(&api.ScriptResponse{Script: "ok"}, nil).Once()

		s, err := NewScriptScreen(context.Background(), f.deps())
		require.NoError(t, err)
		_, err = s.Generate(context.Background(), ScriptForm{
			Format: CustomOption, CustomFormat: "45-second radio spot",
			Strategy: "usp",
			Style:    CustomOption, CustomStyle: "parody",
		})
		require.NoError(t, err)
	})

	t.Run("blank custom text is rejected", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sess.SaveSessionID(context.Background(), "sess-1"))

		s, err := NewScriptScreen(context.Background(), f.deps())
		require.NoError(t, err)
		_, err = s.Generate(context.Background(), ScriptForm{Strategy: CustomOption, CustomStrategy: "  "})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "creative_strategy", verr.Field)
		f.client.AssertNotCalled(t, "GenerateScript", mock.Anything, mock.Anything)
	})

	t.Run("unknown preset is rejected", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sess.SaveSessionID(context.Background(), "sess-1"))

		s, err := NewScriptScreen(context.Background(), f.deps())
		require.NoError(t, err)
		_, err = s.Generate(context.Background(), ScriptForm{Format: "90-second"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "script_format", verr.Field)
	})
}

func TestScriptScreen_ErrorClearsPreviousResult(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.SaveSessionID(context.Background(), "sess-1"))

	f.client.On("GenerateScript", mock.Anything, mock.Anything).
		Return(&api.ScriptResponse{Script: "first"}, nil).Once()
	f.client.On("GenerateScript", mock.Anything, mock.Anything).
		Return(nil, &api.BackendError{StatusCode: 502, Body: "LLM unavailable"}).Once()

	s, err := NewScriptScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), ScriptForm{})
	require.NoError(t, err)
	require.NotNil(t, s.Result())

	_, err = s.Generate(context.Background(), ScriptForm{})
	require.EqualError(t, err, "LLM unavailable")
	assert.Nil(t, s.Result())
	assert.False(t, s.CanContinue())

	// The stored record from the first attempt is untouched.
	assert.Equal(t, "first", f.snapshot(t).Script.Script)
}
