package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore uses application default credentials unless
// GCS_CREDENTIALS_JSON carries an explicit service account key.
func NewGCSStore(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}

	return &GCSStore{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSStore) Put(ctx context.Context, data []byte, filename string) (string, error) {
	name := objectName(s.prefix, filename, time.Now())
	wc := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = http.DetectContentType(data)

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}
	return name, nil
}

func (s *GCSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(ref).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evidence: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}
	return data, nil
}

// Close releases the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
