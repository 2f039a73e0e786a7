// Package storage defines the object store capabilities the artifact service
// depends on and the backends that provide them.
package storage

import (
	"context"
	"io"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the blob operations on a single bucket.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// DownloadObject streams the object at key into w.
	DownloadObject(ctx context.Context, key string, w io.Writer) error
	// UploadObject replaces the object at key with the contents of r.
	// size is the exact byte count, or -1 when unknown.
	UploadObject(ctx context.Context, key string, r io.Reader, size int64) error
	DeleteObject(ctx context.Context, key string) error
}

// Provider hands out bucket-scoped ObjectStorage handles from one
// authenticated client.
type Provider interface {
	Bucket(name string) ObjectStorage
}
