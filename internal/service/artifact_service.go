package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/sankalp69/Visa-prediction/internal/cache"
	"github.com/sankalp69/Visa-prediction/internal/storage"
	"github.com/sankalp69/Visa-prediction/pkg/logger"
)

// downloadedFileMode is applied to downloaded files before they replace the
// destination.
const downloadedFileMode = 0o644

// RemoveAfterUpload is the conventional value for Upload's remove flag: local
// artifacts are consumed once they are safely in the bucket.
const RemoveAfterUpload = true

// ArtifactService moves files between local disk and one bucket.
type ArtifactService struct {
	store       storage.ObjectStorage
	bucket      string
	registryKey string
	listings    cache.ListingCache
	log         zerolog.Logger
}

// ArtifactOption customises an ArtifactService.
type ArtifactOption func(*ArtifactService)

// WithListingCache caches List results; Upload and Delete invalidate them.
func WithListingCache(c cache.ListingCache) ArtifactOption {
	return func(s *ArtifactService) {
		if c != nil {
			s.listings = c
		}
	}
}

func NewArtifactService(store storage.ObjectStorage, bucket, registryKey string, opts ...ArtifactOption) *ArtifactService {
	s := &ArtifactService{
		store:       store,
		bucket:      bucket,
		registryKey: registryKey,
		listings:    cache.NewNoopListingCache(),
		log:         logger.Component("artifact_service").With().Str("bucket", bucket).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bucket returns the bucket this service writes to.
func (s *ArtifactService) Bucket() string { return s.bucket }

// RegistryKey returns the key prefix model artifacts are grouped under.
func (s *ArtifactService) RegistryKey() string { return s.registryKey }

// Upload streams the file at from to the object at to, replacing it. When
// remove is set the local file is deleted, but only after the object store
// has confirmed the write.
func (s *ArtifactService) Upload(ctx context.Context, from, to string, remove bool) error {
	l := s.log.With().Str("from", from).Str("to", to).Logger()
	l.Info().Msg("uploading file")

	if err := s.upload(ctx, from, to); err != nil {
		l.Error().Err(err).Msg("error uploading file")
		return err
	}
	s.invalidate(ctx)

	if remove {
		if err := os.Remove(from); err != nil {
			err = &storage.LocalIOError{Op: "remove", Path: from, Err: err}
			l.Error().Err(err).Msg("uploaded but could not remove local file")
			return err
		}
		l.Info().Msg("removed local file")
	}
	return nil
}

func (s *ArtifactService) upload(ctx context.Context, from, to string) error {
	f, err := os.Open(from)
	if err != nil {
		return &storage.LocalIOError{Op: "open", Path: from, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &storage.LocalIOError{Op: "stat", Path: from, Err: err}
	}
	if info.IsDir() {
		return &storage.LocalIOError{Op: "open", Path: from, Err: errors.New("is a directory")}
	}

	if err := s.store.UploadObject(ctx, to, f, info.Size()); err != nil {
		return &storage.TransferError{Op: "upload", Bucket: s.bucket, Key: to, Err: err}
	}
	return nil
}

// Download writes the object at from to the local path to, creating parent
// directories. Existing content at to is replaced only once the whole object
// has arrived.
func (s *ArtifactService) Download(ctx context.Context, from, to string) error {
	l := s.log.With().Str("from", from).Str("to", to).Logger()
	l.Info().Msg("downloading file")

	if err := s.download(ctx, from, to); err != nil {
		l.Error().Err(err).Msg("error downloading file")
		return err
	}
	return nil
}

func (s *ArtifactService) download(ctx context.Context, from, to string) error {
	dir := filepath.Dir(to)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &storage.LocalIOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(to)+".*.part")
	if err != nil {
		return &storage.LocalIOError{Op: "create", Path: to, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := s.store.DownloadObject(ctx, from, tmp); err != nil {
		return &storage.TransferError{Op: "download", Bucket: s.bucket, Key: from, Err: err}
	}
	if err := tmp.Chmod(downloadedFileMode); err != nil {
		return &storage.LocalIOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &storage.LocalIOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, to); err != nil {
		return &storage.LocalIOError{Op: "rename", Path: to, Err: err}
	}
	committed = true
	return nil
}

// List returns the keys in the bucket that start with prefix. An empty
// prefix lists the whole bucket. Order is whatever the backend yields.
func (s *ArtifactService) List(ctx context.Context, prefix string) ([]string, error) {
	if keys, hit, err := s.listings.GetListing(ctx, s.bucket, prefix); err != nil {
		s.log.Warn().Err(err).Str("prefix", prefix).Msg("listing cache read failed")
	} else if hit {
		return keys, nil
	}

	objects, err := s.store.ListObjects(ctx, prefix)
	if err != nil {
		err = &storage.TransferError{Op: "list", Bucket: s.bucket, Key: prefix, Err: err}
		s.log.Error().Err(err).Str("prefix", prefix).Msg("error listing files")
		return nil, err
	}

	keys := make([]string, 0, len(objects))
	for _, object := range objects {
		keys = append(keys, object.Key)
	}

	if err := s.listings.SetListing(ctx, s.bucket, prefix, keys); err != nil {
		s.log.Warn().Err(err).Str("prefix", prefix).Msg("listing cache write failed")
	}
	return keys, nil
}

// Delete removes the object at key without checking it exists first.
// Whether a missing key is an error is up to the backend; when it is, the
// error matches storage.ErrNotFound.
func (s *ArtifactService) Delete(ctx context.Context, key string) error {
	s.log.Info().Str("key", key).Msg("deleting file")

	if err := s.store.DeleteObject(ctx, key); err != nil {
		err = &storage.TransferError{Op: "delete", Bucket: s.bucket, Key: key, Err: err}
		s.log.Error().Err(err).Str("key", key).Msg("error deleting file")
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ArtifactService) invalidate(ctx context.Context) {
	if err := s.listings.InvalidateBucket(ctx, s.bucket); err != nil {
		s.log.Warn().Err(err).Msg("listing cache invalidation failed")
	}
}
