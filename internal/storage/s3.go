package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// S3Config configures artifact uploads.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // S3-compatible endpoint; path-style addressing when set
	// Prefix is prepended to every object key, e.g. "adwizard/".
	Prefix string

	AccessKeyID     string
	SecretAccessKey string
}

// S3Storage keeps local copies through LocalStorage and uploads on demand.
type S3Storage struct {
	*LocalStorage
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
	prefix   string
}

var _ Storage = (*S3Storage)(nil)

// NewS3Storage writes local copies to dir and uploads to cfg.Bucket.
// Without static keys the default AWS credential chain is used.
func NewS3Storage(ctx context.Context, dir string, cfg S3Config) (*S3Storage, error) {
	local, err := NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		LocalStorage: local,
		client:       client,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		prefix:       strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Key returns the object key name is stored under.
func (s *S3Storage) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// URL returns the public URL of key: path-style against a custom endpoint,
// virtual-hosted on AWS.
func (s *S3Storage) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Upload puts data under the prefixed name and returns its URL. The
// content type is sniffed from the data.
func (s *S3Storage) Upload(ctx context.Context, name string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}

	key := s.Key(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(mimetype.Detect(body).String()),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to S3: %w", key, err)
	}
	return s.URL(key), nil
}
