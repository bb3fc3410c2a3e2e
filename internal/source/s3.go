package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Store serves export files from a bucket on an S3-compatible object
// store. Deployments that publish the exports to cloud storage point the
// service here instead of at a local directory.
type S3Store struct {
	s3Client *s3.Client
	bucket   string
	prefix   string
	logger   *zap.Logger
}

func NewS3Store(cfg map[string]string, logger *zap.Logger) (*S3Store, error) {
	// Parse SSL setting
	useSSL := true
	if sslStr := cfg["use_ssl"]; sslStr != "" {
		if parsed, err := strconv.ParseBool(sslStr); err == nil {
			useSSL = parsed
		}
	}

	// Build endpoint URL
	endpoint := cfg["endpoint"]
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	region := cfg["region"]
	if region == "" {
		region = "us-east-1"
	}

	// Load AWS config with static credentials and custom endpoint
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg["access_key_id"],
			cfg["secret_access_key"],
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom endpoint and path-style addressing for MinIO compatibility
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		s3Client: s3Client,
		bucket:   cfg["bucket"],
		prefix:   cfg["prefix"],
		logger:   logger,
	}, nil
}

func (s *S3Store) Fetch(ctx context.Context, name string) ([]byte, bool, error) {
	key := path.Join(s.prefix, name)

	result, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get export file %s: %w", name, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read export file %s: %w", name, err)
	}

	return data, true, nil
}

func (s *S3Store) Ping(ctx context.Context) error {
	// List at most one object to verify connectivity and credentials
	_, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to S3: %w", err)
	}
	return nil
}
