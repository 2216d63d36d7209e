package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/julianstephens/storeduty/internal/logger"
)

// MinioConfig holds the S3 endpoint settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// MinioConfigFromEnv reads STOREDUTY_S3_ENDPOINT, STOREDUTY_S3_ACCESS_KEY,
// STOREDUTY_S3_SECRET_KEY and STOREDUTY_S3_SECURE.
func MinioConfigFromEnv() MinioConfig {
	return MinioConfig{
		Endpoint:  os.Getenv("STOREDUTY_S3_ENDPOINT"),
		AccessKey: os.Getenv("STOREDUTY_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("STOREDUTY_S3_SECRET_KEY"),
		Secure:    os.Getenv("STOREDUTY_S3_SECURE") != "false",
	}
}

type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioStore(ctx context.Context, cfg MinioConfig, bucket, prefix string) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("STOREDUTY_S3_ENDPOINT is required for s3:// evidence stores")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}
	logger.Info("MinIO evidence store initialized", "endpoint", cfg.Endpoint, "bucket", bucket)

	return &MinioStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *MinioStore) Put(ctx context.Context, data []byte, filename string) (string, error) {
	name := objectName(s.prefix, filename, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}
	return name, nil
}

func (s *MinioStore) Get(ctx context.Context, ref string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evidence: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}
	return data, nil
}
