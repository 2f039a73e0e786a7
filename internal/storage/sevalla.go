package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	cmstorage "github.com/chartmuseum/storage"
	"github.com/sankalp69/Visa-prediction/internal/config"
)

// s3Lister is the slice of the S3 API used for recursive listings.
type s3Lister interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// SevallaClient serves buckets from Sevalla / S3-compatible services through
// chartmuseum's Amazon backend. Listings use the S3 API directly.
type SevallaClient struct {
	endpoint string
	region   string
	s3       s3Lister
}

// NewSevallaClient validates cfg and exports the credentials chartmuseum's
// Amazon backend reads from the environment.
func NewSevallaClient(cfg config.SevallaConfig) (*SevallaClient, error) {
	if cfg.Endpoint == "" {
		return nil, configErrorf("sevalla endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, configErrorf("sevalla credentials must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	env := []struct{ key, value string }{
		{"AWS_ACCESS_KEY_ID", cfg.AccessKey},
		{"AWS_SECRET_ACCESS_KEY", cfg.SecretKey},
		{"AWS_REGION", region},
		{"AWS_DEFAULT_REGION", region},
	}
	for _, e := range env {
		if err := os.Setenv(e.key, e.value); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", e.key, err)
		}
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &SevallaClient{
		endpoint: endpoint,
		region:   region,
		s3:       s3.New(sess),
	}, nil
}

// Bucket returns a handle on the named bucket.
func (c *SevallaClient) Bucket(name string) ObjectStorage {
	backend := cmstorage.NewAmazonS3BackendWithOptions(
		name,
		"", // no prefix
		c.region,
		c.endpoint,
		"",
		&cmstorage.AmazonS3Options{
			S3ForcePathStyle: aws.Bool(true),
		},
	)
	return &backendBucket{backend: backend, list: s3PrefixLister(c.s3, name)}
}

// s3PrefixLister pages through ListObjectsV2 without a delimiter, so keys at
// every depth below prefix are returned.
func s3PrefixLister(client s3Lister, bucket string) objectLister {
	return func(ctx context.Context, prefix string) ([]ObjectInfo, error) {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		}

		results := make([]ObjectInfo, 0)
		err := client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, object := range page.Contents {
				results = append(results, ObjectInfo{
					Key:  aws.StringValue(object.Key),
					Size: aws.Int64Value(object.Size),
				})
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	}
}

var _ Provider = (*SevallaClient)(nil)
