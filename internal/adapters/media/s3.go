package media

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventbooking/internal/domain"
)

// S3Config holds configuration for the S3 media host.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// s3API is the subset of the S3 client used by S3Uploader.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images in an S3 bucket and returns their public URL.
type S3Uploader struct {
	client  s3API
	bucket  string
	folder  string
	baseURL string
}

// NewS3Uploader builds an S3 client from static credentials. When publicBaseURL is empty
// the virtual-hosted bucket URL is used.
func NewS3Uploader(cfg S3Config, folder, publicBaseURL string) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 uploader requires a bucket")
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	}
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return newS3Uploader(s3.NewFromConfig(awsCfg), cfg.Bucket, folder, publicBaseURL), nil
}

func newS3Uploader(client s3API, bucket, folder, baseURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, folder: folder, baseURL: baseURL}
}

func (u *S3Uploader) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	key, err := objectKey(u.folder, img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          img.Body,
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(img.Size),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %w", domain.ErrUpload, key, err)
	}
	return publicURL(u.baseURL, key), nil
}
