package service

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/config"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

// MediaService handles attachment and avatar uploads to the S3-compatible
// object store.
type MediaService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewMediaService constructs an S3-compatible client for the object store.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.StorageAccountID == "" || cfg.StorageAccessKeyID == "" || cfg.StorageSecretAccessKey == "" || cfg.StorageBucketName == "" || cfg.StoragePublicURL == "" {
		return nil, fmt.Errorf("missing object storage configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for object store: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.StorageAccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  s3Client,
		bucket:    cfg.StorageBucketName,
		publicURL: strings.TrimSuffix(cfg.StoragePublicURL, "/"),
	}, nil
}

// UploadPostMedia stores a post attachment under the author's folder.
// The key embeds a millisecond timestamp so repeated uploads never collide.
func (s *MediaService) UploadPostMedia(ctx context.Context, authorID string, att *model.Attachment) (*model.UploadResult, error) {
	if int64(len(att.Data)) > model.MaxAttachmentSizeBytes {
		return nil, model.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(att.Filename))
	if ext == "" {
		ext = ".bin"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" && len(att.Data) > 0 {
		contentType = http.DetectContentType(att.Data[:min(len(att.Data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	key := fmt.Sprintf("%s/%s/%d%s", model.PostMediaFolder, authorID, time.Now().UnixMilli(), ext)
	if err := s.putObject(ctx, key, att.Data, contentType, model.MediaCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &model.UploadResult{URL: url, Key: key}, nil
}

// UploadAvatar enforces size/type, normalizes to 200x200 JPEG and stores
// the result at a fixed per-user key so a new avatar replaces the old one.
func (s *MediaService) UploadAvatar(ctx context.Context, userID string, data []byte) (*model.UploadResult, error) {
	if err := validateImage(data, model.MaxAvatarSizeBytes); err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, model.AvatarWidth, model.AvatarHeight, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/avatar%s", model.AvatarFolder, userID, model.AvatarExt)
	if err := s.putObject(ctx, key, jpegBytes, model.ContentTypeJPEG, model.MediaCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &model.UploadResult{URL: url, Key: key}, nil
}

// validateImage applies size and type checks to an in-memory upload.
func validateImage(data []byte, maxSize int64) error {
	if int64(len(data)) > maxSize {
		return model.ErrFileTooLarge
	}
	if len(data) == 0 {
		return model.ErrInvalidImageType
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return model.ErrInvalidImageType
	}
	return nil
}

// resizeToJPEG centers/crops to target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// putObject uploads bytes to the object store with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// DeleteByURL removes an uploaded object addressed by its public URL.
// URLs outside the configured public base are left alone.
func (s *MediaService) DeleteByURL(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.publicURL+"/")
	if key == url {
		return nil
	}
	return s.DeleteObject(ctx, key)
}

// DeleteObject removes an object by key.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
