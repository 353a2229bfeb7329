package relay

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend uploads to any S3-compatible store (AWS S3, Cloudflare R2, MinIO)
type S3Backend struct {
	client        *s3.Client
	bucket        string
	publicURLBase string
}

// NewS3Backend creates an S3 client with static credentials
func NewS3Backend(endpoint, bucket, accessKey, secretKey, publicURLBase, region string) (*S3Backend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if region == "" {
		region = "auto" // R2
	}

	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true, // MinIO and most S3-compatible services
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3Backend{
		client:        s3.New(opts),
		bucket:        bucket,
		publicURLBase: strings.TrimSuffix(publicURLBase, "/"),
	}, nil
}

// Upload puts the object and returns its public URL
func (b *S3Backend) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s", b.publicURLBase, key), nil
}
