package handlers

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/sankalp69/Visa-prediction/internal/pipeline"
	"github.com/sankalp69/Visa-prediction/internal/repository"
	"github.com/sankalp69/Visa-prediction/internal/service"
	"github.com/sankalp69/Visa-prediction/internal/storage"
)

type ModelHandler struct {
	artifacts *service.ArtifactService
	estimator *service.ModelEstimator
	pushes    repository.PushRepository
	pusherKey string
	uploadDir string
}

// NewModelHandler serves model routes. Files named in push requests must sit
// inside uploadDir.
func NewModelHandler(artifacts *service.ArtifactService, estimator *service.ModelEstimator, pushes repository.PushRepository, pusherKey, uploadDir string) *ModelHandler {
	if pushes == nil {
		pushes = repository.NewNoopPushRepository()
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &ModelHandler{
		artifacts: artifacts,
		estimator: estimator,
		pushes:    pushes,
		pusherKey: pusherKey,
		uploadDir: uploadDir,
	}
}

type pushRequest struct {
	domain.ModelEvaluationArtifact
	KeyPrefix string `json:"key_prefix"`
}

// PushModel uploads a model/preprocessor pair that already sits in the
// server's upload directory. Relative paths are resolved against it and
// anything outside it is rejected.
func (h *ModelHandler) PushModel(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ExportModelPath) == "" || strings.TrimSpace(req.ExportPreprocessorPath) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "export_model_path and export_preprocessor_path are required"})
		return
	}

	evaluation := domain.ModelEvaluationArtifact{}
	var err error
	if evaluation.ExportModelPath, err = resolveUploadPath(h.uploadDir, req.ExportModelPath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if evaluation.ExportPreprocessorPath, err = resolveUploadPath(h.uploadDir, req.ExportPreprocessorPath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefix := req.KeyPrefix
	if prefix == "" {
		prefix = h.pusherKey
	}

	if err := storage.ValidateKey(prefix); prefix != "" && err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pusher := pipeline.NewModelPusher(h.artifacts, evaluation,
		domain.NewModelPusherConfig(prefix), pipeline.WithPushRecorder(h.pushes))
	artifact, err := pusher.InitiateModelPusher(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, artifact)
}

// ListPushes returns the most recent pushes, newest first.
func (h *ModelHandler) ListPushes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	pushes, err := h.pushes.ListPushes(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pushes": pushes})
}

// ModelPresent reports whether the named model is in the registry.
func (h *ModelHandler) ModelPresent(c *gin.Context) {
	name := c.Param("name")
	present, err := h.estimator.IsModelPresent(c.Request.Context(), name)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":    name,
		"key":     h.estimator.ModelKey(name),
		"present": present,
	})
}
