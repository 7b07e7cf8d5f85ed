package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore is the transient staging hop for relay images: upload a
// buffer, hand the public URL to the storefront, delete afterwards.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Store stages objects in a single bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	endpoint  string
	cdnDomain string
}

// NewS3Store creates a store for the given bucket. endpoint overrides the
// public URL base (LocalStack / custom endpoints); cdnDomain wins over both.
func NewS3Store(client *s3.Client, bucket, endpoint, cdnDomain string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// Upload puts the buffer at key and returns the object's public URL.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.publicURL(key), nil
}

// Delete removes a staged object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(s.cdnDomain, "/"), key)
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
