// Package storage uploads user photos to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hcardin/mesada/internal/config"
)

// s3Client is the slice of the S3 API the uploader needs, for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts user photos under a per-user, timestamped key and returns
// the public URL.
type Uploader struct {
	cfg    config.S3Config
	client s3Client
	now    func() time.Time
}

// NewUploader builds an uploader, or a disabled one (nil client) when the
// bucket is not configured.
func NewUploader(cfg config.S3Config) *Uploader {
	u := &Uploader{cfg: cfg, now: time.Now}
	if cfg.Configured() {
		u.client = newS3Client(cfg)
	}
	return u
}

func newS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether uploads can be attempted.
func (u *Uploader) Enabled() bool {
	return u.client != nil
}

// Upload stores the photo bytes and returns the public URL. Upload failures
// propagate to the caller; nothing is swallowed.
func (u *Uploader) Upload(ctx context.Context, userID int64, data []byte, filename string) (string, error) {
	if u.client == nil {
		return "", fmt.Errorf("photo storage not configured")
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("users/%s", safeFilename(fmt.Sprintf("user_%d_%d%s", userID, u.now().Unix(), ext)))

	contentType := "application/octet-stream"
	switch ext {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put photo: %w", err)
	}

	return u.publicURL(key), nil
}

func (u *Uploader) publicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return strings.TrimSuffix(u.cfg.PublicURL, "/") + "/" + key
	}
	endpoint := strings.TrimSuffix(u.cfg.Endpoint, "/")
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	}
	return fmt.Sprintf("%s/%s/%s", endpoint, u.cfg.Bucket, key)
}

// safeFilename keeps only characters that are safe in an object key.
func safeFilename(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.', c == '_', c == '-':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
