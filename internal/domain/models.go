package domain

import (
	"strings"
	"time"
)

// ModelEvaluationArtifact points at the locally exported model and
// preprocessing object produced by the evaluation stage.
type ModelEvaluationArtifact struct {
	ExportModelPath        string `json:"export_model_path"`
	ExportPreprocessorPath string `json:"export_preprocessor_path"`
}

// ModelPusherConfig controls where the pusher writes inside the bucket.
type ModelPusherConfig struct {
	KeyPrefix            string
	ModelFileName        string
	PreprocessorFileName string
}

const (
	DefaultModelFileName        = "model.pkl"
	DefaultPreprocessorFileName = "preprocessor.pkl"
)

// NewModelPusherConfig returns a config with the default object names.
func NewModelPusherConfig(keyPrefix string) ModelPusherConfig {
	return ModelPusherConfig{
		KeyPrefix:            keyPrefix,
		ModelFileName:        DefaultModelFileName,
		PreprocessorFileName: DefaultPreprocessorFileName,
	}
}

// ModelPusherArtifact records where a pushed model pair now lives.
type ModelPusherArtifact struct {
	IsModelPushed              bool   `json:"is_model_pushed"`
	ExportModelFilePath        string `json:"export_model_file_path"`
	ExportPreprocessorFilePath string `json:"export_preprocessor_file_path"`
}

// ModelPush is a persisted history row for a successful push.
type ModelPush struct {
	ID              int64     `json:"id" db:"id"`
	Bucket          string    `json:"bucket" db:"bucket"`
	ModelKey        string    `json:"model_key" db:"model_key"`
	PreprocessorKey string    `json:"preprocessor_key" db:"preprocessor_key"`
	PushedAt        time.Time `json:"pushed_at" db:"pushed_at"`
}

// ObjectKey joins a key prefix and an object name with a single slash.
// An empty prefix yields the bare name.
func ObjectKey(prefix, name string) string {
	prefix = strings.TrimRight(prefix, "/")
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
