package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/sankalp69/Visa-prediction/internal/service"
	"github.com/sankalp69/Visa-prediction/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderStub struct {
	pushes []*domain.ModelPush
	err    error
}

func (r *recorderStub) RecordPush(_ context.Context, push *domain.ModelPush) error {
	r.pushes = append(r.pushes, push)
	return r.err
}

func exportedFiles(t *testing.T) domain.ModelEvaluationArtifact {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "model.pkl")
	pre := filepath.Join(dir, "preprocessing.pkl")
	require.NoError(t, os.WriteFile(model, []byte("model"), 0o644))
	require.NoError(t, os.WriteFile(pre, []byte("preprocessor"), 0o644))
	return domain.ModelEvaluationArtifact{ExportModelPath: model, ExportPreprocessorPath: pre}
}

func TestModelPusher_PushesBothArtifacts(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	svc := service.NewArtifactService(bucket, "model-artifacts", "model-registry")
	evaluation := exportedFiles(t)
	recorder := &recorderStub{}

	pusher := NewModelPusher(svc, evaluation, domain.NewModelPusherConfig("model-registry"), WithPushRecorder(recorder))
	artifact, err := pusher.InitiateModelPusher(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &domain.ModelPusherArtifact{
		IsModelPushed:              true,
		ExportModelFilePath:        "model-registry/model.pkl",
		ExportPreprocessorFilePath: "model-registry/preprocessor.pkl",
	}, artifact)

	data, ok := bucket.Get("model-registry/model.pkl")
	require.True(t, ok)
	assert.Equal(t, "model", string(data))
	data, ok = bucket.Get("model-registry/preprocessor.pkl")
	require.True(t, ok)
	assert.Equal(t, "preprocessor", string(data))

	assert.NoFileExists(t, evaluation.ExportModelPath)
	assert.NoFileExists(t, evaluation.ExportPreprocessorPath)

	require.Len(t, recorder.pushes, 1)
	assert.Equal(t, "model-artifacts", recorder.pushes[0].Bucket)
	assert.Equal(t, "model-registry/model.pkl", recorder.pushes[0].ModelKey)
	assert.Equal(t, "model-registry/preprocessor.pkl", recorder.pushes[0].PreprocessorKey)
}

func TestModelPusher_SecondUploadFailureLeavesFirstObject(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	svc := service.NewArtifactService(bucket, "model-artifacts", "model-registry")
	evaluation := exportedFiles(t)
	require.NoError(t, os.Remove(evaluation.ExportPreprocessorPath))
	recorder := &recorderStub{}

	pusher := NewModelPusher(svc, evaluation, domain.NewModelPusherConfig("model-registry"), WithPushRecorder(recorder))
	artifact, err := pusher.InitiateModelPusher(context.Background())

	require.Error(t, err)
	assert.Nil(t, artifact)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, modelPusherStage, pe.Stage)
	assert.Contains(t, pe.Location, "model_pusher.go:")

	var le *storage.LocalIOError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, evaluation.ExportPreprocessorPath, le.Path)

	_, ok := bucket.Get("model-registry/model.pkl")
	assert.True(t, ok, "first upload is not rolled back")
	_, ok = bucket.Get("model-registry/preprocessor.pkl")
	assert.False(t, ok)
	assert.Empty(t, recorder.pushes)
}

func TestModelPusher_FirstUploadFailure(t *testing.T) {
	bucket := storage.NewMemoryBucket()
	svc := service.NewArtifactService(bucket, "b", "")
	evaluation := exportedFiles(t)
	require.NoError(t, os.Remove(evaluation.ExportModelPath))

	artifact, err := NewModelPusher(svc, evaluation, domain.NewModelPusherConfig("p")).InitiateModelPusher(context.Background())

	require.Error(t, err)
	assert.Nil(t, artifact)
	objects, listErr := bucket.ListObjects(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, objects)
	assert.FileExists(t, evaluation.ExportPreprocessorPath)
}

func TestModelPusher_RecorderFailureIsNotFatal(t *testing.T) {
	svc := service.NewArtifactService(storage.NewMemoryBucket(), "b", "")
	recorder := &recorderStub{err: errors.New("db down")}

	artifact, err := NewModelPusher(svc, exportedFiles(t), domain.NewModelPusherConfig("p"), WithPushRecorder(recorder)).
		InitiateModelPusher(context.Background())

	require.NoError(t, err)
	assert.True(t, artifact.IsModelPushed)
	assert.Len(t, recorder.pushes, 1)
}

func TestModelPusher_DefaultsFileNames(t *testing.T) {
	svc := service.NewArtifactService(storage.NewMemoryBucket(), "b", "")

	artifact, err := NewModelPusher(svc, exportedFiles(t), domain.ModelPusherConfig{KeyPrefix: "registry/"}).
		InitiateModelPusher(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "registry/model.pkl", artifact.ExportModelFilePath)
	assert.Equal(t, "registry/preprocessor.pkl", artifact.ExportPreprocessorFilePath)
}

func TestPipelineError_UnwrapsToCause(t *testing.T) {
	cause := &storage.TransferError{Op: "upload", Bucket: "b", Key: "k", Err: storage.ErrNotFound}
	err := newPipelineError("stage", cause)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "stage failed at [model_pusher_test.go:")
	assert.Contains(t, err.Error(), "upload b/k")
}
