package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intent-engine/internal/config"
	"intent-engine/internal/handler"
	"intent-engine/internal/logger"
	"intent-engine/internal/resource"
	"intent-engine/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	for _, w := range cfg.Warnings {
		zlog.Warn(w)
	}

	zlog.Info("Intent Engine",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Resources are loaded once; the server does not start without them
	store, err := resource.Open(context.Background(), cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to load classifier resources", zap.Error(err))
	}

	classifier, err := service.NewIntentClassifierFromConfig(store, cfg.Classifier, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize classifier", zap.Error(err))
	}
	zlog.Info("Classifier initialized",
		zap.Float64("confidence_threshold", cfg.Classifier.ConfidenceThreshold),
		zap.Float64("pattern_confidence", cfg.Classifier.PatternConfidence),
		zap.Float64("fuzzy_threshold", cfg.Classifier.FuzzyThreshold),
		zap.String("fuzzy_algorithm", cfg.Classifier.FuzzyAlgorithm),
	)

	intentHandler := handler.NewIntentHandler(classifier, zlog)
	router := handler.NewRouter(cfg.Server, intentHandler, handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}, zlog)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shut down", zap.Error(err))
		return
	}
	zlog.Info("Server stopped")
}
