package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the configuration for S3 storage.
type S3Config struct {
	Bucket          string `yaml:"bucket" env:"BUCKET, overwrite"`
	Region          string `yaml:"region" env:"REGION, overwrite"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT, overwrite" validate:"omitempty,url"` // S3-compatible stores such as MinIO
	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID, overwrite"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY, overwrite"`
}

// S3Storage stores objects in an S3 bucket
type S3Storage struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Storage creates an S3 client. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies. A
// custom endpoint switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage needs a bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	configOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// Not every compatible store accepts the default CRC32 checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		})
	}

	return &S3Storage{
		client:   s3.NewFromConfig(awsCfg, clientOpts...),
		bucket:   cfg.Bucket,
		region:   region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

// Put uploads r as key
func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if strings.HasSuffix(key, ".wav") {
		input.ContentType = aws.String("audio/wav")
	} else if strings.HasSuffix(key, ".json") {
		input.ContentType = aws.String("application/json")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload to S3: %w", err)
	}
	return nil
}

// Location returns the object URL
func (s *S3Storage) Location(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
