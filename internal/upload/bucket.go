package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// BucketStore keeps flat, non-tenant files in an S3-compatible bucket.
type BucketStore struct {
	client     *s3.Client
	bucket     string
	prefix     string
	endpoint   string
	region     string
	publicBase string
	logger     zerolog.Logger
}

// NewBucketStore creates a store for cfg. A custom endpoint switches the
// client to path-style addressing for MinIO and similar servers.
func NewBucketStore(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (*BucketStore, error) {
	logger = logger.With().Str("component", "bucket").Logger()

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("prefix", cfg.Prefix).
		Msg("bucket store initialised")

	return &BucketStore{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		region:     cfg.Region,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:     logger,
	}, nil
}

// List returns every object under the prefix, newest first.
func (b *BucketStore) List(ctx context.Context) ([]model.Screenshot, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.prefix),
	})

	files := []model.Screenshot{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to list bucket objects")
			return nil, fmt.Errorf("failed to list bucket %s: %w", b.bucket, err)
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), b.prefix)
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			files = append(files, model.Screenshot{
				Name:      name,
				URL:       b.PublicURL(name),
				Size:      aws.ToInt64(obj.Size),
				UpdatedAt: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].UpdatedAt.After(files[j].UpdatedAt)
	})

	return files, nil
}

// Upload stores data under name and returns its public URL.
func (b *BucketStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := b.prefix + name

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		b.logger.Error().Err(err).Str("key", key).Msg("failed to put object")
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	b.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("object uploaded")

	return b.PublicURL(name), nil
}

// Remove deletes name. Deleting a missing object succeeds.
func (b *BucketStore) Remove(ctx context.Context, name string) error {
	key := b.prefix + name

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		b.logger.Error().Err(err).Str("key", key).Msg("failed to delete object")
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// PublicURL returns the URL browsers use to fetch name.
func (b *BucketStore) PublicURL(name string) string {
	key := escapeKey(b.prefix + name)

	switch {
	case b.publicBase != "":
		return b.publicBase + "/" + key
	case b.endpoint != "":
		return b.endpoint + "/" + b.bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
