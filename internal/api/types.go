// Package api provides the HTTP client for the ad generation backend.
// The backend wraps the generative services (script LLM, image synthesis,
// text-to-speech, avatar video); this package only knows the shape of the
// requests it issues and the JSON it gets back.
package api

// Backend endpoint paths, relative to the configured base URL.
const (
	PathUploadProduct  = "/upload-product"
	PathScript         = "/script"
	PathVoice          = "/voice"
	PathImageOptimized = "/image/optimized"
	PathImage          = "/image"
	PathAvatars        = "/video/avatars"
	PathVideoVoices    = "/video/voices"
	PathVideoGenerate  = "/video/generate"
)

// VideoStatusCompleted is the only avatar video status treated as done.
const VideoStatusCompleted = "completed"

// DefaultVideoFormat is the container requested for avatar videos.
const DefaultVideoFormat = "mp4"

// UploadProductRequest is the multipart form sent to /upload-product.
type UploadProductRequest struct {
	Name        string
	Description string
	ImagePaths  []string
	VideoPath   string
	VoicePath   string
}

// ProductInfo is the product echo returned by /upload-product.
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

// UploadProductResponse is the JSON body returned by /upload-product.
type UploadProductResponse struct {
	SessionID string        `json:"session_id" validate:"required"`
	Product   *ProductInfo  `json:"product,omitempty"`
	Assets    ProductAssets `json:"assets"`
}

// ScriptRequest is the multipart form sent to /script.
type ScriptRequest struct {
	Prompt           string
	ImagePath        string
	VideoPath        string
	SessionID        string
	ScriptFormat     string
	CreativeStrategy string
	ExecutionStyle   string
}

// ScriptResponse is the JSON body returned by /script.
type ScriptResponse struct {
	SessionID    string `json:"session_id"`
	Script       string `json:"script" validate:"required"`
	ImageCaption string `json:"image_caption,omitempty"`
	VideoCaption string `json:"video_caption,omitempty"`
}

// VoiceRequest is the JSON body sent to /voice.
type VoiceRequest struct {
	Script  string `json:"script" validate:"required"`
	VoiceID string `json:"voice_id" validate:"required"`
}

// VoiceResponse is the JSON body returned by /voice.
type VoiceResponse struct {
	VoiceText   string `json:"voice_text" validate:"required"`
	AudioBase64 string `json:"audio_base64" validate:"required,base64"`
}

// OptimizedImageRequest is the JSON body sent to /image/optimized.
type OptimizedImageRequest struct {
	UserInput string `json:"user_input" validate:"required"`
	Style     string `json:"style"`
	Tone      string `json:"tone"`
	Size      string `json:"size"`
	Quality   string `json:"quality"`
}

// OptimizedImageResponse is the JSON body returned by /image/optimized.
type OptimizedImageResponse struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	ImageData       string `json:"image_data" validate:"required"`
}

// ImageRequest is the JSON body sent to /image.
type ImageRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

// ImageResponse is the JSON body returned by /image.
type ImageResponse struct {
	ImageURL string `json:"image_url" validate:"required"`
}

// AvatarOption is one entry of the /video/avatars catalog.
type AvatarOption struct {
	ID   string `json:"avatar_id"`
	Name string `json:"name"`
}

// Label returns the display name, falling back to the ID.
func (o AvatarOption) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}

// VoiceOption is one entry of the /video/voices catalog.
type VoiceOption struct {
	ID   string `json:"voice_id"`
	Name string `json:"name"`
}

// Label returns the display name, falling back to the ID.
func (o VoiceOption) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}

type avatarsResponse struct {
	Avatars []AvatarOption `json:"avatars"`
}

type voicesResponse struct {
	Voices []VoiceOption `json:"voices"`
}

// VideoRequest is the JSON body sent to /video/generate.
type VideoRequest struct {
	Script      string `json:"script" validate:"required"`
	AvatarID    string `json:"avatar_id" validate:"required"`
	VoiceID     string `json:"voice_id" validate:"required"`
	VideoFormat string `json:"video_format"`
}

// VideoResponse is the JSON body returned by /video/generate.
type VideoResponse struct {
	Status   string `json:"status" validate:"required"`
	VideoURL string `json:"video_url,omitempty"`
	AvatarID string `json:"avatar_id"`
	VoiceID  string `json:"voice_id"`
}

// Completed reports whether the backend finished rendering the video.
func (r VideoResponse) Completed() bool {
	return r.Status == VideoStatusCompleted
}
