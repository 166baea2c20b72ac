package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/photofolio/internal/config"
)

// MinIOStore keeps blobs in an S3-compatible bucket.
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStore connects to the bucket described by cfg.
func NewMinIOStore(cfg config.S3Config) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *MinIOStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIOStore) Put(ctx context.Context, pathname string, r io.Reader, size int64, contentType string) (Object, error) {
	now := time.Now().UTC()
	info, err := m.client.PutObject(ctx, m.bucket, pathname, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded-at": now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s: %w", pathname, err)
	}

	return Object{
		URL:         joinURL(m.baseURL, pathname),
		Pathname:    pathname,
		Size:        info.Size,
		ContentType: contentType,
		UploadedAt:  now,
	}, nil
}

func (m *MinIOStore) Delete(ctx context.Context, url string) error {
	pathname, ok := pathnameFromURL(m.baseURL, url)
	if !ok {
		return ErrObjectNotFound
	}
	if err := m.client.RemoveObject(ctx, m.bucket, pathname, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", pathname, err)
	}
	return nil
}

func (m *MinIOStore) List(ctx context.Context, prefix string) ([]Object, error) {
	// Cancelling stops the lister goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []Object
	for info := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, "/") {
			continue
		}
		objects = append(objects, Object{
			URL:         joinURL(m.baseURL, info.Key),
			Pathname:    info.Key,
			Size:        info.Size,
			ContentType: info.ContentType,
			UploadedAt:  info.LastModified,
		})
	}
	sortNewestFirst(objects)
	return objects, nil
}

func sortNewestFirst(objects []Object) {
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].UploadedAt.After(objects[j].UploadedAt)
	})
}
