// Package storage holds media files on S3-compatible object storage.
// A self-hosted install pairs it with MinIO; any provider speaking
// the S3 API works the same way.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/habitedge/habitedge/internal/config"
)

const (
	saveTimeout    = 30 * time.Second
	requestTimeout = 10 * time.Second
)

// Storage is what the media service needs from a file backend.
type Storage interface {
	Save(path string, file io.Reader) error
	Delete(path string) error

	// URL returns a direct link to the object. The bucket is private
	// by default, so most callers want the presigned variants on
	// S3Storage instead.
	URL(path string) string
}

// S3Storage talks to a single bucket. Presign expiries differ by use:
// avatars get long-lived links, journal attachments short ones.
type S3Storage struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	baseURL       string
	publicExpiry  time.Duration
	privateExpiry time.Duration
}

// New builds the S3 client from app config and makes sure the bucket
// exists. Callers check cfg.S3Enabled() first; without a bucket the
// app runs with uploads disabled.
func New(c *cfg.Config) (*S3Storage, error) {
	ctx := context.Background()

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.S3Region)}
	if c.S3AccessKey != "" && c.S3SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3AccessKey, c.S3SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.S3Endpoint)
			// MinIO and most self-hosted gateways route by path
			o.UsePathStyle = true
		}
	})

	s := &S3Storage{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        c.S3Bucket,
		baseURL:       baseURL(c),
		publicExpiry:  c.S3PresignExpiryPublic,
		privateExpiry: c.S3PresignExpiryPrivate,
	}

	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	slog.Info("object storage ready", "bucket", s.bucket, "endpoint", c.S3Endpoint)
	return s, nil
}

func baseURL(c *cfg.Config) string {
	if c.S3Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.S3Bucket, c.S3Region)
	}
	return strings.TrimSuffix(c.S3Endpoint, "/") + "/" + c.S3Bucket
}

// ensureBucket creates the bucket on first boot so a fresh MinIO
// container needs no manual setup.
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to create missing bucket %q: %w", s.bucket, err)
	}

	slog.Info("created bucket", "bucket", s.bucket)
	return nil
}

func (s *S3Storage) Save(path string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

func (s *S3Storage) Delete(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *S3Storage) URL(path string) string {
	return s.baseURL + "/" + path
}

// PublicURL presigns with the long expiry used for avatars. Falls
// back to the direct URL when presigning fails, which still works on
// buckets with a public read policy.
func (s *S3Storage) PublicURL(path string) string {
	url, err := s.PresignedURL(path, s.publicExpiry)
	if err != nil {
		return s.URL(path)
	}
	return url
}

// PresignedURL grants temporary access to a private object.
func (s *S3Storage) PresignedURL(path string, expiry time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", path, err)
	}

	return req.URL, nil
}

// PrivateExpiry is the configured lifetime for attachment links.
func (s *S3Storage) PrivateExpiry() time.Duration {
	return s.privateExpiry
}
