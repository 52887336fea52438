// Package media stores article images in an S3-compatible bucket
// (Cloudflare R2 in production) and returns their public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bilgisen/newsdesk/internal/config"
	"github.com/google/uuid"
)

var (
	// ErrTooLarge means the image exceeds the configured size limit.
	ErrTooLarge = errors.New("image too large")
	// ErrUnsupportedType means the bytes are not a jpeg, png, webp or gif image.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrEmpty means no image bytes were given.
	ErrEmpty = errors.New("empty image")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes images to one bucket.
type Uploader struct {
	client    ObjectPutter
	bucket    string
	publicURL string
	maxSize   int64
	newID     func() string
}

// New returns an uploader writing to bucket through client. Public URLs are
// publicURL + "/" + key.
func New(client ObjectPutter, bucket, publicURL string, maxSize int64) *Uploader {
	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxSize:   maxSize,
		newID:     uuid.NewString,
	}
}

// NewR2Uploader builds an S3 client for the configured R2 account. It returns
// nil, nil when no bucket is configured.
func NewR2Uploader(ctx context.Context, cfg *config.Config) (*Uploader, error) {
	if !cfg.ImagesEnabled() {
		return nil, nil
	}

	endpoint := cfg.R2Endpoint
	if endpoint == "" {
		if cfg.R2AccountID == "" {
			return nil, errors.New("R2_ENDPOINT or CLOUDFLARE_ACCOUNT_ID is required for image uploads")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return New(client, cfg.R2Bucket, cfg.R2PublicURL, cfg.MaxImageSize), nil
}

// UploadImage checks data and stores it under articles/{owner}/{uuid}{ext}.
func (u *Uploader) UploadImage(ctx context.Context, owner string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if u.maxSize > 0 && int64(len(data)) > u.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), u.maxSize)
	}
	contentType := DetectImageType(data)
	if contentType == "" {
		return "", ErrUnsupportedType
	}
	return u.Upload(ctx, ImageKey(owner, u.newID(), contentType), contentType, data)
}

// Upload stores body under key and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.publicURL + "/" + key, nil
}

// DetectImageType returns the MIME type of an allowed image, or "".
func DetectImageType(data []byte) string {
	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return ""
	}
	return contentType
}

// ImageKey builds the object key for an image owned by an article.
func ImageKey(owner, id, contentType string) string {
	owner = strings.Trim(unsafeKeyChars.ReplaceAllString(owner, "-"), "-")
	if owner == "" {
		owner = "unsorted"
	}
	return fmt.Sprintf("articles/%s/%s%s", owner, id, extensions[contentType])
}
