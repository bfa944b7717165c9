package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend implements Backend for S3-compatible storage
type S3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config contains S3 connection configuration
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // For S3-compatible services (MinIO, Backblaze B2)
	AccessKey string
	SecretKey string
	Prefix    string // Optional key prefix
}

// NewS3Backend creates a new S3-compatible backend
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	// Build AWS config. Without explicit keys the default chain
	// (environment, shared config, instance role) is used.
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and similar
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Backend{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Put uploads data to S3
func (s *S3Backend) Put(ctx context.Context, key string, data io.Reader, size int64) error {
	fullKey := s.prefixKey(key)

	// Read all data (needed for ContentLength)
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(buf),
		ContentLength: aws.Int64(int64(len(buf))),
	})

	if err != nil {
		return fmt.Errorf("S3 upload failed: %w", err)
	}

	return nil
}

// Get downloads data from S3. The object is read fully before returning.
func (s *S3Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullKey := s.prefixKey(key)

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("S3 download failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("S3 download failed: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes an object from S3
func (s *S3Backend) Delete(ctx context.Context, key string) error {
	fullKey := s.prefixKey(key)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})

	if err != nil {
		return fmt.Errorf("S3 delete failed: %w", err)
	}

	return nil
}

// List returns all keys with the given prefix
func (s *S3Backend) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.prefixKey(prefix)
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("S3 list failed: %w", err)
		}

		for _, obj := range page.Contents {
			key := strings.TrimPrefix(*obj.Key, s.prefix)
			keys = append(keys, strings.TrimPrefix(key, "/"))
		}
	}

	return keys, nil
}

// Exists checks if an object exists in S3
func (s *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	fullKey := s.prefixKey(key)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})

	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Close releases resources
func (s *S3Backend) Close() error {
	return nil
}

// prefixKey adds the configured prefix to a key
func (s *S3Backend) prefixKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
