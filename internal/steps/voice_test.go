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

func TestResolveVoiceID(t *testing.T) {
	tests := []struct {
		name    string
		choice  string
		custom  string
		want    string
		wantErr bool
	}{
		{name: "empty selects first preset", want: "kdmDKE6EkgrWrrykO9Qt"},
		{name: "preset", choice: "L0Dsvb3SLTyegXwtm47J", want: "L0Dsvb3SLTyegXwtm47J"},
		{name: "unlisted id", choice: " my-cloned-voice ", want: "my-cloned-voice"},
		{name: "custom", choice: CustomOption, custom: " abc123 ", want: "abc123"},
		{name: "blank custom", choice: CustomOption, custom: " ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVoiceID(tt.choice, tt.custom)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "voice_id", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVoiceScreen_RequiresScript(t *testing.T) {
	f := newFixture(t)
	v, err := NewVoiceScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = v.Synthesize(context.Background(), "kdmDKE6EkgrWrrykO9Qt")
	require.ErrorIs(t, err, ErrPrerequisiteMissing)
	assert.Equal(t, "No script available. Please generate a script first.", err.Error())
	assert.False(t, v.CanContinue())
	f.client.AssertNotCalled(t, "GenerateVoice", mock.Anything, mock.Anything)
}

func TestVoiceScreen_Synthesize(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, `Narrator: "Clean in seconds."`)

	f.client.On("GenerateVoice", mock.Anything, api.VoiceRequest{
		Script:  `Narrator: "Clean in seconds."`,
		VoiceID: "L0Dsvb3SLTyegXwtm47J",
	}).Return(&api.VoiceResponse{VoiceText: "Clean in seconds.", AudioBase64: "SUQzBA=="}, nil).Once()

	v, err := NewVoiceScreen(context.Background(), f.deps())
	require.NoError(t, err)
	assert.Nil(t, v.Result())

	rec, err := v.Synthesize(context.Background(), "L0Dsvb3SLTyegXwtm47J")
	require.NoError(t, err)
	assert.Equal(t, session.Voice{VoiceText: "Clean in seconds.", AudioBase64: "SUQzBA=="}, *rec)
	assert.Equal(t, "data:audio/mpeg;base64,SUQzBA==", rec.AudioDataURI())
	assert.True(t, v.CanContinue())
	assert.Equal(t, *rec, *f.snapshot(t).Voice)

	// A fresh mount shows the stored voice without calling the backend.
	again, err := NewVoiceScreen(context.Background(), f.deps())
	require.NoError(t, err)
	require.NotNil(t, again.Result())
	assert.Equal(t, "Clean in seconds.", again.Result().VoiceText)
}

func TestVoiceScreen_BlankVoiceID(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, "Buy it.")

	v, err := NewVoiceScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = v.Synthesize(context.Background(), "  ")
	require.EqualError(t, err, "Please choose a voice")
	f.client.AssertNotCalled(t, "GenerateVoice", mock.Anything, mock.Anything)
}

func TestVoiceScreen_FailureClearsResult(t *testing.T) {
	f := newFixture(t)
	f.seedScript(t, "Buy it.")
	require.NoError(t, f.sess.SaveVoice(context.Background(), session.Voice{VoiceText: "old"}))

	f.client.On("GenerateVoice", mock.Anything, mock.Anything).
		Return(nil, &api.BackendError{StatusCode: 500, Body: "TTS quota exceeded"}).Once()

	v, err := NewVoiceScreen(context.Background(), f.deps())
	require.NoError(t, err)
	require.NotNil(t, v.Result())

	_, err = v.Synthesize(context.Background(), "kdmDKE6EkgrWrrykO9Qt")
	require.EqualError(t, err, "TTS quota exceeded")
	assert.Nil(t, v.Result())
	assert.Equal(t, "old", f.snapshot(t).Voice.VoiceText)
}
