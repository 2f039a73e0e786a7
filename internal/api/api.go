package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sankalp69/Visa-prediction/internal/api/handlers"
	"github.com/sankalp69/Visa-prediction/internal/api/middleware"
	"github.com/sankalp69/Visa-prediction/internal/repository"
	"github.com/sankalp69/Visa-prediction/internal/service"
)

type Services struct {
	Artifacts *service.ArtifactService
	Estimator *service.ModelEstimator
	Pushes    repository.PushRepository
	PusherKey string
	UploadDir string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Artifacts != nil {
		artifactHandler := handlers.NewArtifactHandler(services.Artifacts, services.UploadDir)
		artifactGroup := apiGroup.Group("/artifacts")
		{
			artifactGroup.GET("", artifactHandler.ListArtifacts)
			artifactGroup.PUT("/*key", artifactHandler.UploadArtifact)
			artifactGroup.GET("/*key", artifactHandler.DownloadArtifact)
			artifactGroup.DELETE("/*key", artifactHandler.DeleteArtifact)
		}

		estimator := services.Estimator
		if estimator == nil {
			estimator = service.NewModelEstimator(services.Artifacts, services.Artifacts.RegistryKey(), "")
		}
		modelHandler := handlers.NewModelHandler(services.Artifacts, estimator, services.Pushes, services.PusherKey, services.UploadDir)
		modelGroup := apiGroup.Group("/models")
		{
			modelGroup.POST("/push", modelHandler.PushModel)
			modelGroup.GET("/pushes", modelHandler.ListPushes)
			modelGroup.GET("/:name/present", modelHandler.ModelPresent)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
