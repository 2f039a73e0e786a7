// Package pipeline holds the training pipeline stages that talk to the
// artifact store.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/sankalp69/Visa-prediction/internal/service"
	"github.com/sankalp69/Visa-prediction/pkg/logger"
)

const modelPusherStage = "model pusher"

// PushRecorder persists successful pushes.
type PushRecorder interface {
	RecordPush(ctx context.Context, push *domain.ModelPush) error
}

// ModelPusher uploads the evaluated model and its preprocessing object.
type ModelPusher struct {
	artifacts  *service.ArtifactService
	evaluation domain.ModelEvaluationArtifact
	config     domain.ModelPusherConfig
	recorder   PushRecorder
	log        zerolog.Logger
}

// ModelPusherOption customises a ModelPusher.
type ModelPusherOption func(*ModelPusher)

// WithPushRecorder records every successful push.
func WithPushRecorder(r PushRecorder) ModelPusherOption {
	return func(p *ModelPusher) { p.recorder = r }
}

func NewModelPusher(artifacts *service.ArtifactService, evaluation domain.ModelEvaluationArtifact, cfg domain.ModelPusherConfig, opts ...ModelPusherOption) *ModelPusher {
	if cfg.ModelFileName == "" {
		cfg.ModelFileName = domain.DefaultModelFileName
	}
	if cfg.PreprocessorFileName == "" {
		cfg.PreprocessorFileName = domain.DefaultPreprocessorFileName
	}
	p := &ModelPusher{
		artifacts:  artifacts,
		evaluation: evaluation,
		config:     cfg,
		log:        logger.Component("model_pusher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InitiateModelPusher uploads the model, then the preprocessor. The local
// files are removed once uploaded. If the second upload fails the first
// object stays in the bucket; no artifact is returned on any failure.
func (p *ModelPusher) InitiateModelPusher(ctx context.Context) (*domain.ModelPusherArtifact, error) {
	p.log.Info().Msg("Entered InitiateModelPusher")

	modelKey := domain.ObjectKey(p.config.KeyPrefix, p.config.ModelFileName)
	preprocessorKey := domain.ObjectKey(p.config.KeyPrefix, p.config.PreprocessorFileName)

	if err := p.artifacts.Upload(ctx, p.evaluation.ExportModelPath, modelKey, service.RemoveAfterUpload); err != nil {
		return nil, newPipelineError(modelPusherStage, err)
	}

	if err := p.artifacts.Upload(ctx, p.evaluation.ExportPreprocessorPath, preprocessorKey, service.RemoveAfterUpload); err != nil {
		p.log.Warn().Str("bucket", p.artifacts.Bucket()).Str("key", modelKey).
			Msg("model was uploaded but preprocessor push failed; bucket holds a partial push")
		return nil, newPipelineError(modelPusherStage, err)
	}

	artifact := &domain.ModelPusherArtifact{
		IsModelPushed:              true,
		ExportModelFilePath:        modelKey,
		ExportPreprocessorFilePath: preprocessorKey,
	}

	if p.recorder != nil {
		push := &domain.ModelPush{
			Bucket:          p.artifacts.Bucket(),
			ModelKey:        modelKey,
			PreprocessorKey: preprocessorKey,
		}
		if err := p.recorder.RecordPush(ctx, push); err != nil {
			p.log.Error().Err(err).Str("model_key", modelKey).Msg("failed to record model push")
		}
	}

	p.log.Info().
		Str("bucket", p.artifacts.Bucket()).
		Str("model_key", modelKey).
		Str("preprocessor_key", preprocessorKey).
		Msg("Model pushed successfully")
	return artifact, nil
}
