package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	cmstorage "github.com/chartmuseum/storage"
)

// objectLister lists every key under prefix, at any depth.
type objectLister func(ctx context.Context, prefix string) ([]ObjectInfo, error)

// backendBucket adapts a chartmuseum storage.Backend to ObjectStorage.
// chartmuseum buffers whole objects and only lists one directory level, so
// listing goes through a backend specific lister instead.
type backendBucket struct {
	backend cmstorage.Backend
	list    objectLister
}

func (b *backendBucket) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	objects, err := b.list(ctx, prefix)
	if err != nil {
		return nil, classifyBackendError(err)
	}
	return objects, nil
}

func (b *backendBucket) DownloadObject(ctx context.Context, key string, w io.Writer) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	object, err := b.backend.GetObject(key)
	if err != nil {
		return classifyBackendError(err)
	}
	if _, err := w.Write(object.Content); err != nil {
		return fmt.Errorf("failed writing %s: %w", key, err)
	}
	return nil
}

func (b *backendBucket) UploadObject(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("failed reading upload body for %s: %w", key, err)
	}
	if err := b.backend.PutObject(key, buf.Bytes()); err != nil {
		return classifyBackendError(err)
	}
	return nil
}

func (b *backendBucket) DeleteObject(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := b.backend.DeleteObject(key); err != nil {
		return classifyBackendError(err)
	}
	return nil
}

func classifyBackendError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return markNotFound(err)
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return markNotFound(err)
		}
	}
	return err
}
