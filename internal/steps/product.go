package steps

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/session"
)

// SuccessNoticeDuration is how long the upload success notice stays up.
const SuccessNoticeDuration = 2 * time.Second

// ProductForm is the product upload input. File fields are local paths.
type ProductForm struct {
	Name        string `validate:"required"`
	Description string
	ImagePaths  []string `validate:"dive,file"`
	VideoPath   string   `validate:"omitempty,file"`
	VoicePath   string   `validate:"omitempty,file"`
}

var productMessages = map[string]string{
	"Name": "Product name is required",
}

// ProductScreen uploads the product and its assets.
type ProductScreen struct {
	*screen

	result   *session.Product
	noticeAt time.Time
}

// NewProductScreen mounts the product upload screen.
func NewProductScreen(ctx context.Context, deps Deps) (*ProductScreen, error) {
	s, err := mount(ctx, "product", deps)
	if err != nil {
		return nil, err
	}
	return &ProductScreen{screen: s}, nil
}

// Submit validates form, uploads it and persists the product record and
// session ID. Invalid input never reaches the network.
func (p *ProductScreen) Submit(ctx context.Context, form ProductForm) (*session.Product, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)

	if err := p.check(form); err != nil {
		return nil, p.fail(err)
	}

	o, err := p.begin(ctx, func() {
		p.result = nil
		p.noticeAt = time.Time{}
	})
	if err != nil {
		return nil, err
	}

	resp, err := p.client.UploadProduct(o.ctx, api.UploadProductRequest{
		Name:        form.Name,
		Description: form.Description,
		ImagePaths:  form.ImagePaths,
		VideoPath:   form.VideoPath,
		VoicePath:   form.VoicePath,
	})
	if err != nil {
		return nil, o.end(err)
	}

	rec := productRecord(resp, form)
	err = o.commit(func() error {
		if err := p.session.SaveProduct(o.ctx, rec); err != nil {
			return err
		}
		p.result = &rec
		p.noticeAt = p.now()
		p.snap.SessionID = rec.SessionID
		p.snap.Product = &rec
		return nil
	})
	if err != nil {
		return nil, o.end(err)
	}
	return &rec, o.end(nil)
}

// check runs the form validation and the file kind checks.
func (p *ProductScreen) check(form ProductForm) error {
	if err := p.validate.Struct(form); err != nil {
		return validationError(err, productMessages)
	}
	for _, path := range form.ImagePaths {
		if err := checkFileKind("ImagePaths", path, "image/"); err != nil {
			return err
		}
	}
	if form.VideoPath != "" {
		if err := checkFileKind("VideoPath", form.VideoPath, "video/"); err != nil {
			return err
		}
	}
	if form.VoicePath != "" {
		if err := checkFileKind("VoicePath", form.VoicePath, "audio/"); err != nil {
			return err
		}
	}
	return nil
}

// Result returns the record uploaded by this screen, if any.
func (p *ProductScreen) Result() *session.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// SuccessVisible reports whether the success notice is still showing at now.
func (p *ProductScreen) SuccessVisible(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.noticeAt.IsZero() && now.Sub(p.noticeAt) < SuccessNoticeDuration
}

// CanContinue reports whether an upload on this screen produced a session.
func (p *ProductScreen) CanContinue() bool {
	r := p.Result()
	return r != nil && r.SessionID != ""
}

// productRecord maps the response, filling the product echo from the form
// when the backend omits it.
func productRecord(resp *api.UploadProductResponse, form ProductForm) session.Product {
	rec := session.Product{
		SessionID: resp.SessionID,
		Assets: session.ProductAssets{
			Images: resp.Assets.Images,
			Video:  resp.Assets.Video,
			Voice:  resp.Assets.Voice,
		},
	}
	if rec.Assets.Images == nil {
		rec.Assets.Images = []string{}
	}
	if resp.Product != nil {
		rec.Product = &session.ProductInfo{Name: resp.Product.Name, Description: resp.Product.Description}
	} else {
		rec.Product = &session.ProductInfo{Name: form.Name, Description: form.Description}
	}
	return rec
}

// checkFileKind sniffs path and requires a MIME type under family.
func checkFileKind(field, path, family string) error {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return invalid(field, "Cannot read %s: %v", path, err)
	}
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), family) {
			return nil
		}
	}
	return invalid(field, "%s is not %s file", path, kindNames[family])
}

var kindNames = map[string]string{
	"image/": "an image",
	"video/": "a video",
	"audio/": "an audio",
}
