package handlers

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sankalp69/Visa-prediction/internal/service"
	"github.com/sankalp69/Visa-prediction/internal/storage"
)

type ArtifactHandler struct {
	artifacts *service.ArtifactService
	uploadDir string
}

func NewArtifactHandler(artifacts *service.ArtifactService, uploadDir string) *ArtifactHandler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &ArtifactHandler{artifacts: artifacts, uploadDir: uploadDir}
}

// objectKey extracts the *key wildcard without its leading slash and
// rejects keys that would leave the bucket.
func objectKey(c *gin.Context) (string, bool) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object key is required"})
		return "", false
	}
	if err := storage.ValidateKey(key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return key, true
}

func (h *ArtifactHandler) tempFile(pattern string) (*os.File, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, err
	}
	return os.CreateTemp(h.uploadDir, pattern)
}

// ListArtifacts handles GET /artifacts?prefix=
func (h *ArtifactHandler) ListArtifacts(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix != "" {
		if err := storage.ValidateKey(prefix); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	keys, err := h.artifacts.List(c.Request.Context(), prefix)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bucket": h.artifacts.Bucket(),
		"prefix": prefix,
		"keys":   keys,
	})
}

// UploadArtifact stores the raw request body under the key.
func (h *ArtifactHandler) UploadArtifact(c *gin.Context) {
	key, ok := objectKey(c)
	if !ok {
		return
	}

	tmp, err := h.tempFile("upload-*")
	if err != nil {
		errorResponse(c, err)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.ReadFrom(c.Request.Body); err != nil {
		tmp.Close()
		log.Error().Err(err).Str("key", key).Msg("failed to buffer upload body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if err := tmp.Close(); err != nil {
		errorResponse(c, err)
		return
	}

	if err := h.artifacts.Upload(c.Request.Context(), tmpPath, key, service.RemoveAfterUpload); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bucket": h.artifacts.Bucket(), "key": key})
}

// DownloadArtifact streams the object back as an attachment.
func (h *ArtifactHandler) DownloadArtifact(c *gin.Context) {
	key, ok := objectKey(c)
	if !ok {
		return
	}

	tmp, err := h.tempFile("download-*")
	if err != nil {
		errorResponse(c, err)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := h.artifacts.Download(c.Request.Context(), key, tmpPath); err != nil {
		errorResponse(c, err)
		return
	}
	c.FileAttachment(tmpPath, path.Base(key))
}

// DeleteArtifact removes the object.
func (h *ArtifactHandler) DeleteArtifact(c *gin.Context) {
	key, ok := objectKey(c)
	if !ok {
		return
	}
	if err := h.artifacts.Delete(c.Request.Context(), key); err != nil {
		errorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
