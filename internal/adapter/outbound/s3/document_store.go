package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/famvault/server/internal/domain/record"
	"github.com/famvault/server/internal/shared/config"
)

// ErrObjectNotFound indicates the object was not found.
var ErrObjectNotFound = errors.New("object not found")

// DocumentStore implements record.DocumentStore over an S3-compatible
// bucket. Content is addressed by the opaque keys the record domain
// generates; nothing here interprets them.
type DocumentStore struct {
	client *s3.Client
	bucket string
}

// NewDocumentStore creates a document store from storage configuration.
// A custom endpoint switches to path-style addressing for S3-compatible
// stores (MinIO, R2).
func NewDocumentStore(cfg config.StorageConfig) (*DocumentStore, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, errors.New("incomplete storage configuration")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &DocumentStore{client: client, bucket: cfg.Bucket}, nil
}

// NewDocumentStoreWithClient wraps an existing S3 client, mainly for tests.
func NewDocumentStoreWithClient(client *s3.Client, bucket string) *DocumentStore {
	return &DocumentStore{client: client, bucket: bucket}
}

// Put stores content under key.
func (s *DocumentStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Get returns a reader over the content stored under key. The caller closes
// it.
func (s *DocumentStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes the content stored under key. Deleting a missing key is
// not an error.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

var _ record.DocumentStore = (*DocumentStore)(nil)
