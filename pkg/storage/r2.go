package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"shiprate-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Storage archives imported rate sheets to a Cloudflare R2 (S3 compatible) bucket.
type R2Storage struct {
	client        ObjectPutter
	bucketName    string
	publicURL     string
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewR2Storage(ctx context.Context, accountId, accessKey, secretKey, bucketName, publicURL string, uploadTimeout time.Duration) (*R2Storage, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return NewR2StorageWithClient(client, bucketName, publicURL, uploadTimeout), nil
}

// NewR2StorageWithClient wraps an existing client.
func NewR2StorageWithClient(client ObjectPutter, bucketName, publicURL string, uploadTimeout time.Duration) *R2Storage {
	return &R2Storage{
		client:        client,
		bucketName:    bucketName,
		publicURL:     strings.TrimSuffix(publicURL, "/"),
		uploadTimeout: uploadTimeout,
		now:           time.Now,
	}
}

// Archive stores a copy of an imported file under imports/YYYY/MM/DD/ and
// returns its URL.
func (s *R2Storage) Archive(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("imports/%s/%s-%s",
		s.now().UTC().Format("2006/01/02"), utils.GenerateUUID(), utils.SanitizeFilename(name))

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive to R2: %w", err)
	}

	if s.publicURL == "" {
		return fmt.Sprintf("r2://%s/%s", s.bucketName, key), nil
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
