package s3

// Package s3 implements the object store port on S3-compatible storage. The
// prototype dashboards kept client artifacts in a consumer file-sharing
// account; deployments now point this adapter at a bucket (or a MinIO
// endpoint in development).

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	apperrors "github.com/biplus/ui-api/internal/errors"
)

// Config controls the S3 object store.
type Config struct {
	Bucket string
	Region string
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO).
	Endpoint string
	// Static credentials; when empty the default AWS chain is used.
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle is required by most S3-compatible stores.
	UsePathStyle bool
}

// ObjectStore fetches and writes artifacts in a single bucket. Folder paths
// from the identity table map directly onto object keys.
type ObjectStore struct {
	client *awss3.Client
	bucket string
}

// ErrNotFound is returned when the requested artifact does not exist. It
// carries the not-found error code, so apperrors.IsNotFound matches it.
var ErrNotFound error = apperrors.NotFound("object not found")

// New builds an ObjectStore from Config, resolving credentials through the
// default AWS chain unless static keys are configured.
func New(ctx context.Context, cfg Config) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *awss3.Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

// Fetch returns the raw bytes at path or ErrNotFound.
func (s *ObjectStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pathToKey(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3: get %s: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s: %w", path, err)
	}
	return data, nil
}

// Put overwrites the artifact at path.
func (s *ObjectStore) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pathToKey(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", path, err)
	}
	return nil
}

// pathToKey converts a folder-rooted artifact path into an object key.
func pathToKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
