package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sankalp69/Visa-prediction/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCSClient holds an authenticated Google Cloud Storage JSON API client for
// one project.
type GCSClient struct {
	client    *gcs.Service
	projectID string
	region    string
}

// NewGCSClient validates cfg and eagerly builds the authenticated client.
// A missing project id fails with ErrConfiguration before credentials are
// looked up.
func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*GCSClient, error) {
	if cfg.ProjectID == "" {
		return nil, configErrorf("environment variable %s is not set", config.ProjectIDEnvKey)
	}

	opts, err := gcsClientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %w", err)
	}

	return &GCSClient{
		client:    client,
		projectID: cfg.ProjectID,
		region:    cfg.Region,
	}, nil
}

func gcsClientOptions(ctx context.Context, cfg config.GCSConfig) ([]option.ClientOption, error) {
	if cfg.Endpoint != "" {
		return []option.ClientOption{
			option.WithEndpoint(cfg.Endpoint),
			option.WithoutAuthentication(),
		}, nil
	}

	var (
		creds *google.Credentials
		err   error
	)
	if cfg.CredentialsFile != "" {
		data, readErr := os.ReadFile(cfg.CredentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("unable to read credentials file %s: %w", cfg.CredentialsFile, readErr)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, gcs.DevstorageReadWriteScope)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, gcs.DevstorageReadWriteScope)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load Google credentials: %w", err)
	}

	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

// Client returns the underlying storage service.
func (c *GCSClient) Client() *gcs.Service { return c.client }

// ProjectID returns the project the client was created for.
func (c *GCSClient) ProjectID() string { return c.projectID }

// Region returns the configured region.
func (c *GCSClient) Region() string { return c.region }

// Bucket returns a handle on the named bucket. No request is made.
func (c *GCSClient) Bucket(name string) ObjectStorage {
	return &gcsBucket{objects: c.client.Objects, bucket: name}
}

type gcsBucket struct {
	objects *gcs.ObjectsService
	bucket  string
}

func (b *gcsBucket) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	call := b.objects.List(b.bucket).Prefix(prefix).Fields("nextPageToken", "items(name,size)")
	err := call.Pages(ctx, func(page *gcs.Objects) error {
		for _, object := range page.Items {
			results = append(results, ObjectInfo{
				Key:  object.Name,
				Size: int64(object.Size),
			})
		}
		return nil
	})
	if err != nil {
		return nil, classifyGCSError(err)
	}
	return results, nil
}

func (b *gcsBucket) DownloadObject(ctx context.Context, key string, w io.Writer) error {
	resp, err := b.objects.Get(b.bucket, key).Context(ctx).Download()
	if err != nil {
		return classifyGCSError(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("unable to read object body: %w", err)
	}
	return nil
}

func (b *gcsBucket) UploadObject(ctx context.Context, key string, r io.Reader, _ int64) error {
	object := &gcs.Object{Name: key}
	if _, err := b.objects.Insert(b.bucket, object).Media(r).Context(ctx).Do(); err != nil {
		return classifyGCSError(err)
	}
	return nil
}

func (b *gcsBucket) DeleteObject(ctx context.Context, key string) error {
	if err := b.objects.Delete(b.bucket, key).Context(ctx).Do(); err != nil {
		return classifyGCSError(err)
	}
	return nil
}

func classifyGCSError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return markNotFound(err)
	}
	return err
}

var _ Provider = (*GCSClient)(nil)
