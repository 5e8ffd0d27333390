// Package storage is the upload relay: it pushes image files to an
// S3-compatible bucket with public-read visibility and hands back the
// deterministic public URL that gets persisted next to the owning row.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/xid"
)

// MaxUploadBytes bounds a single uploaded file. The handlers enforce it
// before the bytes ever reach this package.
const MaxUploadBytes = 10 << 20 // 10MB

// allowedExtensions is the image allow-list for uploaded photos.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Config carries the bucket credentials resolved at startup.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// Client wraps the S3 API for one bucket.
type Client struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// New builds a client against the configured endpoint with static
// credentials. Works with AWS proper and with S3-compatible stores
// (MinIO, R2) via the custom endpoint.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" || cfg.PublicURL == "" {
		return nil, fmt.Errorf("storage: missing required object-storage configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload pushes one object with public-read visibility and returns its
// public URL.
func (c *Client) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if len(content) > MaxUploadBytes {
		return "", fmt.Errorf("storage: object %s exceeds %d bytes", key, MaxUploadBytes)
	}

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	return c.publicURL + "/" + key, nil
}

// Delete removes one object. Callers treat failures here as best-effort
// when cleaning up photos of deleted rows.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: deleting %s: %w", key, err)
	}
	return nil
}

// KeyFromURL recovers the object key from a public URL this client built.
// Returns "" for URLs outside our bucket.
func (c *Client) KeyFromURL(url string) string {
	prefix := c.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// BuildKey derives a collision-free object key from the owner's identity, a
// sanitized fragment of the original filename, and an xid (xids embed a
// creation timestamp, so keys also sort chronologically). Returns the key
// and the content type for the file's extension, or an error for
// non-image extensions.
func BuildKey(prefix string, userNum int64, filename string) (key, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("storage: unsupported image extension %q (allowed: .jpg, .jpeg, .png, .gif, .webp)", ext)
	}

	base := sanitizeName(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	key = fmt.Sprintf("%s/%d/%s-%s%s", prefix, userNum, base, xid.New().String(), ext)
	return key, contentType, nil
}

// sanitizeName reduces a user-supplied filename fragment to a safe,
// URL-friendly token.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "photo"
	}
	const maxFragment = 40
	s := b.String()
	if len(s) > maxFragment {
		s = s[:maxFragment]
	}
	return s
}
