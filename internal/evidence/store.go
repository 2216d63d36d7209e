// Package evidence stores photo evidence and checks when it was taken.
package evidence

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/storeduty/internal/utils"
)

// Store is a blob store for evidence photos. Put returns an opaque reference
// that Get accepts.
type Store interface {
	Put(ctx context.Context, data []byte, filename string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Open returns the Store for uri: s3://bucket/prefix (MinIO or any
// S3-compatible endpoint), gs://bucket/prefix (Google Cloud Storage), or a
// local directory path.
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, prefix, err := splitBucketURI(uri)
		if err != nil {
			return nil, err
		}
		return NewMinioStore(ctx, MinioConfigFromEnv(), bucket, prefix)
	case strings.HasPrefix(uri, "gs://"):
		bucket, prefix, err := splitBucketURI(uri)
		if err != nil {
			return nil, err
		}
		return NewGCSStore(ctx, bucket, prefix)
	default:
		return NewDirStore(utils.ExpandPath(uri))
	}
}

func splitBucketURI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid evidence store uri %q: %w", uri, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("invalid evidence store uri %q: missing bucket", uri)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// objectName builds a collision-free name grouped by upload month, keeping
// the original extension.
func objectName(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := path.Join(now.Format("2006/01"), uuid.NewString()+ext)
	if prefix != "" {
		name = path.Join(prefix, name)
	}
	return name
}
