package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sankalp69/Visa-prediction/internal/storage"
)

// statusFor maps storage errors onto HTTP status codes.
func statusFor(err error) int {
	var localErr *storage.LocalIOError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConfiguration), errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.As(err, &localErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
