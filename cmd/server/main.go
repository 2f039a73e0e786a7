package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankalp69/Visa-prediction/internal/api"
	"github.com/sankalp69/Visa-prediction/internal/app"
	"github.com/sankalp69/Visa-prediction/internal/config"
	"github.com/sankalp69/Visa-prediction/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Log.Format, os.Stdout)
	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	config.EnsureDir(cfg.Server.UploadDir)

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize artifact storage")
	}
	defer application.Close()

	router := api.NewRouter(&api.Services{
		Artifacts: application.Artifacts,
		Estimator: application.Estimator,
		Pushes:    application.Pushes,
		PusherKey: cfg.Artifacts.ModelPusherKey,
		UploadDir: cfg.Server.UploadDir,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// Give in-flight transfers five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
