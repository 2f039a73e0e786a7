package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sankalp69/Visa-prediction/internal/config"
)

// MinioClient serves buckets from MinIO or any other S3-compatible endpoint.
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient creates the MinIO client. Buckets are expected to exist.
func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, configErrorf("minio endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, configErrorf("minio credentials must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioClient{client: client}, nil
}

// Bucket returns a handle on the named bucket.
func (c *MinioClient) Bucket(name string) ObjectStorage {
	return &minioBucket{client: c.client, bucket: name}
}

type minioBucket struct {
	client *minio.Client
	bucket string
}

func (b *minioBucket) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, classifyMinioError(object.Err)
		}
		results = append(results, ObjectInfo{Key: object.Key, Size: object.Size})
	}
	return results, nil
}

func (b *minioBucket) DownloadObject(ctx context.Context, key string, w io.Writer) error {
	object, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return classifyMinioError(err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	if _, err := io.Copy(w, object); err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (b *minioBucket) UploadObject(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func (b *minioBucket) DeleteObject(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return classifyMinioError(err)
	}
	return nil
}

func classifyMinioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return markNotFound(err)
	}
	return err
}

var _ Provider = (*MinioClient)(nil)
