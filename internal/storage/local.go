package storage

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	cmstorage "github.com/chartmuseum/storage"
	"github.com/sankalp69/Visa-prediction/internal/config"
)

// LocalClient keeps each bucket as a directory under a root directory.
type LocalClient struct {
	rootDir string
}

// NewLocalClient returns a provider rooted at cfg.RootDir.
func NewLocalClient(cfg config.LocalConfig) (*LocalClient, error) {
	if cfg.RootDir == "" {
		return nil, configErrorf("local storage directory must be provided")
	}
	return &LocalClient{rootDir: cfg.RootDir}, nil
}

// Bucket returns a handle on the bucket directory. The directory is created
// on first write.
func (c *LocalClient) Bucket(name string) ObjectStorage {
	root := filepath.Join(c.rootDir, name)
	return &backendBucket{
		backend: cmstorage.NewLocalFilesystemBackend(root),
		list:    walkLister(root),
	}
}

// walkLister lists files below root whose slash separated relative path
// starts with prefix. The walk starts at the deepest directory the prefix
// names.
func walkLister(root string) objectLister {
	return func(ctx context.Context, prefix string) ([]ObjectInfo, error) {
		start := root
		if i := strings.LastIndex(prefix, "/"); i >= 0 {
			start = filepath.Join(root, filepath.FromSlash(prefix[:i]))
		}

		results := make([]ObjectInfo, 0)
		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == start && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			key := filepath.ToSlash(rel)
			if !strings.HasPrefix(key, prefix) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			results = append(results, ObjectInfo{Key: key, Size: info.Size()})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	}
}

var _ Provider = (*LocalClient)(nil)
