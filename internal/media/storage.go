package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/streamhive/streamhive-backend/internal/config"
)

// Storage is the media-host contract the account flows depend on. Upload
// consumes the local temp file on every path, success or failure; Delete is
// best-effort and callers are expected to log rather than propagate its
// errors.
type Storage interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage uploads assets to an S3-compatible bucket (MinIO in development).
type S3Storage struct {
	client    s3API
	bucket    string
	publicURL string
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(cfg.S3PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Storage{client: client, bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

func storageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload stores the file at localPath in the bucket and returns its public
// URL. The local temp file is removed exactly once regardless of outcome.
func (s *S3Storage) Upload(ctx context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload file: %w", err)
	}
	defer f.Close()

	ext := filepath.Ext(localPath)
	key := storageKey(ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes a previously uploaded asset by its public URL. URLs that do
// not belong to this bucket are ignored.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}

	key := strings.TrimPrefix(fileURL, s.publicURL+"/")
	if key == fileURL {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
