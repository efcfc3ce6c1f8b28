package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// defaultTimeout bounds each call to the object store.
const defaultTimeout = 10 * time.Second

type (
	// S3Store implements Store using an S3-compatible backend. All blobs live
	// in a single bucket dedicated to customer images.
	S3Store struct {
		client  *s3.Client
		bucket  string
		region  string
		baseURL string
		timeout time.Duration
	}

	// S3Config configures the S3 store.
	S3Config struct {
		Bucket string
		Region string
		// Endpoint optionally points the client at an S3-compatible server
		// such as MinIO or LocalStack; path-style addressing is used when
		// set.
		Endpoint string
		// Timeout bounds each call to the store; defaults to 10s.
		Timeout time.Duration
	}
)

// NewS3Store constructs an S3-backed blob store, loading AWS credentials from
// the environment.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	var s3Opts []func(*s3.Options)
	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		})
		baseURL = fmt.Sprintf("%s/%s", cfg.Endpoint, cfg.Bucket)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &S3Store{
		client:  s3.NewFromConfig(awsCfg, s3Opts...),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: baseURL,
		timeout: timeout,
	}, nil
}

// Put uploads a blob to the bucket.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// URL returns the durable public URL for an existing blob. The URL is derived
// deterministically from the key, but the blob's existence is confirmed first
// so that a URL is never handed out for a blob that was not stored.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			err = ErrNotFound
		}
		return "", &StorageError{Op: "url", Key: key, Err: err}
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete removes a blob from the bucket. S3 reports success for a key that
// does not exist, which gives Delete the idempotency the protocol relies on.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
