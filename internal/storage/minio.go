package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
)

// MinIOArchive stores JSON snapshots of deleted restaurants in a bucket.
type MinIOArchive struct {
	client *minio.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewMinIOArchive creates the MinIO client and ensures the bucket exists.
func NewMinIOArchive(ctx context.Context, cfg config.ArchiveConfig) (*MinIOArchive, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	a := &MinIOArchive{client: mc, bucket: cfg.Bucket, prefix: cfg.Prefix, now: time.Now}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, a.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return a, nil
}

// ObjectKey builds the key for a snapshot: <prefix><restaurantId>/<unix-nanos>.json
func ObjectKey(prefix, restaurantID string, at time.Time) string {
	return path.Join(prefix, url.PathEscape(restaurantID), fmt.Sprintf("%d.json", at.UnixNano()))
}

// Archive uploads the rendered document and returns its object key.
func (a *MinIOArchive) Archive(ctx context.Context, restaurantID string, body []byte) (string, error) {
	key := ObjectKey(a.prefix, restaurantID, a.now().UTC())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return key, nil
}

// PresignedURL returns a time-limited GET URL for an archived snapshot.
func (a *MinIOArchive) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
