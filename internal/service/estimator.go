package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/sankalp69/Visa-prediction/internal/storage"
	"github.com/sankalp69/Visa-prediction/pkg/logger"
)

// ModelEstimator saves and loads named models under a key prefix. Loaded
// models land in tmpDir for the caller to deserialize.
type ModelEstimator struct {
	artifacts *ArtifactService
	modelPath string
	tmpDir    string
	log       zerolog.Logger
}

func NewModelEstimator(artifacts *ArtifactService, modelPath, tmpDir string) *ModelEstimator {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &ModelEstimator{
		artifacts: artifacts,
		modelPath: modelPath,
		tmpDir:    tmpDir,
		log:       logger.Component("model_estimator"),
	}
}

// ModelKey returns the object key for the named model.
func (e *ModelEstimator) ModelKey(name string) string {
	return domain.ObjectKey(e.modelPath, name)
}

// SaveModel serializes model into a temporary file and uploads it. The
// temporary file is removed once the upload is confirmed, or on failure.
func (e *ModelEstimator) SaveModel(ctx context.Context, model io.WriterTo, name string) error {
	if err := os.MkdirAll(e.tmpDir, 0o755); err != nil {
		return &storage.LocalIOError{Op: "mkdir", Path: e.tmpDir, Err: err}
	}
	tmp, err := os.CreateTemp(e.tmpDir, filepath.Base(name)+".*.tmp")
	if err != nil {
		return &storage.LocalIOError{Op: "create", Path: e.tmpDir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := model.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("serialize model %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &storage.LocalIOError{Op: "write", Path: tmpPath, Err: err}
	}

	if err := e.artifacts.Upload(ctx, tmpPath, e.ModelKey(name), RemoveAfterUpload); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			e.log.Warn().Err(rmErr).Str("path", tmpPath).Msg("could not clean up serialized model")
		}
		return err
	}
	return nil
}

// SaveModelFile uploads an already serialized model and keeps the local file.
func (e *ModelEstimator) SaveModelFile(ctx context.Context, localPath, name string) error {
	return e.artifacts.Upload(ctx, localPath, e.ModelKey(name), false)
}

// LoadModel downloads the named model and returns its local path.
func (e *ModelEstimator) LoadModel(ctx context.Context, name string) (string, error) {
	localPath := filepath.Join(e.tmpDir, filepath.Base(name))
	if err := e.artifacts.Download(ctx, e.ModelKey(name), localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// IsModelPresent reports whether the named model exists in the bucket.
func (e *ModelEstimator) IsModelPresent(ctx context.Context, name string) (bool, error) {
	key := e.ModelKey(name)
	keys, err := e.artifacts.List(ctx, key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}
