package model

import "errors"

const (
	MaxAttachmentSizeBytes = 25 * 1024 * 1024
	MaxAvatarSizeBytes     = 5 * 1024 * 1024
	AvatarWidth            = 200
	AvatarHeight           = 200
	AvatarFolder           = "avatars"
	PostMediaFolder        = "posts"
	AvatarExt              = ".jpg"
	MediaCacheControl      = "public, max-age=3600"
)

// Supported image content types for avatar normalization
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

var allowedMediaKinds = map[string]struct{}{
	MediaImage: {},
	MediaVideo: {},
	MediaAudio: {},
}

// IsAllowedMediaKind reports if kind is one of image, video, audio.
func IsAllowedMediaKind(kind string) bool {
	_, ok := allowedMediaKinds[kind]
	return ok
}

// Attachment is a local file selected for a new post, already read into
// memory. Kind is one of the media kinds above.
type Attachment struct {
	Filename string
	Kind     string
	Data     []byte
}

// UploadResult represents the uploaded object location.
// URL is the public-facing URL; Key is the object key inside the bucket
// (useful for future deletes).
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Media errors
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)
