// Package storage holds the profile avatar object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxAvatarBytes caps accepted avatar uploads.
const MaxAvatarBytes = 5 << 20

// DefaultURLExpiry is how long presigned avatar links stay valid.
const DefaultURLExpiry = 24 * time.Hour

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AvatarStore persists profile pictures and hands out presigned links.
type AvatarStore interface {
	Upload(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (key string, err error)
	URL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// KeyFromURL recovers the object key embedded in a presigned avatar link.
// Returns "" when the link does not point at an avatar object.
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if i := strings.Index(u.Path, "avatars/"); i >= 0 {
		return u.Path[i:]
	}
	return ""
}

// MinioAvatarStore implements AvatarStore over MinIO/S3-compatible storage.
type MinioAvatarStore struct {
	client *minio.Client
	bucket string
	newID  func() string
}

// NewMinioAvatarStore connects to the endpoint and ensures the bucket exists.
// newID supplies object name suffixes so uploads never collide.
func NewMinioAvatarStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, newID func() string) (*MinioAvatarStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioAvatarStore{client: client, bucket: bucket, newID: newID}, nil
}

// Upload stores the image under avatars/<userID>/<id>.<ext> and returns the key.
func (s *MinioAvatarStore) Upload(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	ext, ok := extByContentType[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type %q", contentType)
	}
	if size <= 0 || size > MaxAvatarBytes {
		return "", fmt.Errorf("avatar size %d out of range", size)
	}
	key := fmt.Sprintf("avatars/%s/%s.%s", userID, s.newID(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put avatar: %w", err)
	}
	return key, nil
}

// URL returns a presigned GET link for the stored avatar.
func (s *MinioAvatarStore) URL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, DefaultURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return u.String(), nil
}

// Remove deletes the stored avatar, tolerating keys that are already gone.
func (s *MinioAvatarStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}
