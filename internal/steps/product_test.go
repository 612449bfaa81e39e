package steps

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

func TestProductScreen_Validation(t *testing.T) {
	textFile := writeFile(t, "notes.png", []byte("just some text, not an image"))

	tests := []struct {
		name      string
		form      ProductForm
		wantField string
		wantMsg   string
	}{
		{name: "empty name", form: ProductForm{Name: ""}, wantField: "Name", wantMsg: "Product name is required"},
		{name: "blank name", form: ProductForm{Name: "   \t"}, wantField: "Name", wantMsg: "Product name is required"},
		{name: "missing image", form: ProductForm{Name: "Widget", ImagePaths: []string{"/does/not/exist.png"}}, wantField: "ImagePaths"},
		{name: "wrong image kind", form: ProductForm{Name: "Widget", ImagePaths: []string{textFile}}, wantField: "ImagePaths"},
		{name: "wrong video kind", form: ProductForm{Name: "Widget", VideoPath: textFile}, wantField: "VideoPath"},
		{name: "wrong voice kind", form: ProductForm{Name: "Widget", VoicePath: textFile}, wantField: "VoicePath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p, err := NewProductScreen(context.Background(), f.deps())
			require.NoError(t, err)

			rec, err := p.Submit(context.Background(), tt.form)
			assert.Nil(t, rec)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Message)
			}
			assert.Equal(t, err, p.Err())

			f.client.AssertNotCalled(t, "UploadProduct", mock.Anything, mock.Anything)
			assert.False(t, f.snapshot(t).Has(session.KeyProduct))
		})
	}
}

func TestProductScreen_Submit(t *testing.T) {
	f := newFixture(t)
	img := writeFile(t, "widget.png", pngHeader)

	f.client.On("UploadProduct", mock.Anything, api.UploadProductRequest{
		Name:        "Widget X",
		Description: "Cleans anything",
		ImagePaths:  []string{img},
	}).Return(&api.UploadProductResponse{
		SessionID: "sess-42",
		Assets:    api.ProductAssets{Images: []string{"sess-42_image_0_widget.png"}},
	}, nil).Once()

	p, err := NewProductScreen(context.Background(), f.deps())
	require.NoError(t, err)

	rec, err := p.Submit(context.Background(), ProductForm{
		Name:        "  Widget X ",
		Description: "Cleans anything",
		ImagePaths:  []string{img},
	})
	require.NoError(t, err)
	require.NoError(t, p.Err())

	// Product echo is filled from the form when the backend omits it.
	want := session.Product{
		SessionID: "sess-42",
		Product:   &session.ProductInfo{Name: "Widget X", Description: "Cleans anything"},
		Assets:    session.ProductAssets{Images: []string{"sess-42_image_0_widget.png"}},
	}
	assert.Equal(t, want, *rec)

	snap := f.snapshot(t)
	assert.Equal(t, "sess-42", snap.SessionID)
	require.NotNil(t, snap.Product)
	assert.Equal(t, want, *snap.Product)

	assert.True(t, p.CanContinue())
	assert.False(t, p.Loading())
	assert.True(t, p.SuccessVisible(testNow.Add(time.Second)))
	assert.False(t, p.SuccessVisible(testNow.Add(SuccessNoticeDuration)))
}

func TestProductScreen_SubmitOverwritesSessionID(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.SaveSessionID(context.Background(), "old-session"))

	f.client.On("UploadProduct", mock.Anything, mock.Anything).
		Return(&api.UploadProductResponse{
			SessionID: "new-session",
			Product:   &api.ProductInfo{Name: "Echoed"},
		}, nil).Once()

	p, err := NewProductScreen(context.Background(), f.deps())
	require.NoError(t, err)
	rec, err := p.Submit(context.Background(), ProductForm{Name: "Typed"})
	require.NoError(t, err)

	assert.Equal(t, "Echoed", rec.Name())
	assert.Equal(t, "new-session", f.snapshot(t).SessionID)
}

func TestProductRecord_TypedFieldsRoundTrip(t *testing.T) {
	resp := &api.UploadProductResponse{
		SessionID: "sess-7",
		Product:   &api.ProductInfo{Name: "Echoed", Description: "From the backend"},
		Assets: api.ProductAssets{
			Images: []string{"sess-7_image_0_a.png"},
			Video:  "sess-7_video_b.mp4",
			Voice:  "sess-7_voice_c.mp3",
		},
	}
	rec := productRecord(resp, ProductForm{Name: "Typed"})

	want, err := json.Marshal(resp)
	require.NoError(t, err)
	got, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	// A response without an images list is stored with an empty one.
	rec = productRecord(&api.UploadProductResponse{SessionID: "sess-8"}, ProductForm{Name: "Typed"})
	assert.Equal(t, []string{}, rec.Assets.Images)
	assert.Equal(t, "Typed", rec.Name())
}

func TestProductScreen_BackendErrorVerbatim(t *testing.T) {
	f := newFixture(t)
	f.client.On("UploadProduct", mock.Anything, mock.Anything).
		Return(nil, &api.BackendError{StatusCode: 500, Body: "Upload failed: disk full"}).Once()

	p, err := NewProductScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), ProductForm{Name: "Widget"})
	require.Error(t, err)
	assert.Equal(t, "Upload failed: disk full", err.Error())
	assert.Equal(t, "Upload failed: disk full", p.Err().Error())
	assert.ErrorIs(t, err, api.ErrServerError)

	assert.False(t, p.CanContinue())
	assert.False(t, p.SuccessVisible(testNow))
	assert.Equal(t, session.Snapshot{}, f.snapshot(t))
}

func TestProductScreen_ResponseAfterCloseIsDiscarded(t *testing.T) {
	f := newFixture(t)

	var p *ProductScreen
	f.client.On("UploadProduct", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { p.Close() }).
		Return(&api.UploadProductResponse{SessionID: "late"}, nil).Once()

	var err error
	p, err = NewProductScreen(context.Background(), f.deps())
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), ProductForm{Name: "Widget"})
	assert.ErrorIs(t, err, ErrViewClosed)
	assert.Nil(t, p.Err())
	assert.Nil(t, p.Result())
	assert.Equal(t, session.Snapshot{}, f.snapshot(t))

	// A closed screen refuses new work.
	_, err = p.Submit(context.Background(), ProductForm{Name: "Widget"})
	assert.True(t, errors.Is(err, ErrViewClosed))
}
