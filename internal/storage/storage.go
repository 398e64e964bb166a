// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Stat when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// UploadGrant is a time-limited authorization for a single direct PUT to
// object storage. The client must send exactly the listed headers.
type UploadGrant struct {
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int               `json:"expiresIn"`
}

// ObjectInfo describes a stored object as reported by the storage service.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// ObjectStorage is the interface for issuing upload grants and managing objects.
type ObjectStorage interface {
	// PresignPut builds a time-limited grant for uploading one object under key.
	PresignPut(ctx context.Context, key, contentType string) (*UploadGrant, error)
	// Stat reports the stored object's metadata, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
