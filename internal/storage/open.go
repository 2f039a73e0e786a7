package storage

import (
	"context"

	"github.com/sankalp69/Visa-prediction/internal/config"
)

// Open builds the Provider selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch cfg.Backend {
	case config.BackendGCS, "":
		return NewGCSClient(ctx, cfg.GCS)
	case config.BackendMinio, config.BackendS3:
		return NewMinioClient(cfg.Minio)
	case config.BackendSevalla:
		return NewSevallaClient(cfg.Sevalla)
	case config.BackendLocal:
		return NewLocalClient(cfg.Local)
	case config.BackendMemory:
		return NewMemoryClient(), nil
	default:
		return nil, configErrorf("unknown storage backend %q", cfg.Backend)
	}
}
