package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Objects never change after upload; keys embed a UUID, so caches may hold
// them forever.
const immutableCacheControl = "public, max-age=31536000, immutable"

// MinioStorage implements ObjectStorage using a MinIO (or any S3-compatible)
// backend. Switching providers only requires changing STORAGE_ENDPOINT and
// credentials — no code changes are needed.
type MinioStorage struct {
	client        *minio.Client
	bucket        string
	publicBase    string
	presignExpiry time.Duration
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool, presignExpires int) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Printf("storage: created bucket %q", bucket)
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStorage{
		client:        client,
		bucket:        bucket,
		publicBase:    strings.TrimRight(publicBase, "/"),
		presignExpiry: time.Duration(presignExpires) * time.Second,
	}, nil
}

// PresignPut builds a time-limited URL authorizing one direct PUT of the
// object. The returned headers must accompany the upload so that the stored
// content type matches what was declared.
func (s *MinioStorage) PresignPut(ctx context.Context, key, contentType string) (*UploadGrant, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign put %q: %w", key, err)
	}
	return &UploadGrant{
		URL: u.String(),
		Headers: map[string]string{
			"Content-Type":  contentType,
			"Cache-Control": immutableCacheControl,
		},
		ExpiresIn: int(s.presignExpiry / time.Second),
	}, nil
}

// Stat reports the content type and size of the stored object.
func (s *MinioStorage) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	return &ObjectInfo{ContentType: info.ContentType, Size: info.Size}, nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL returns the browser-accessible URL for the given key. Each path
// segment is percent-encoded; the key's slashes are preserved.
func (s *MinioStorage) PublicURL(key string) string {
	return PublicURL(s.publicBase, key)
}

// PublicURL joins base and key with per-segment percent-encoding. Pure and
// deterministic — no network call.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
