package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/KatherineCox/anvil-portal/internal/accession"
	"github.com/KatherineCox/anvil-portal/internal/config"
	"github.com/KatherineCox/anvil-portal/internal/ingest"
	"github.com/KatherineCox/anvil-portal/internal/logging"
	"github.com/KatherineCox/anvil-portal/internal/metrics"
	"github.com/KatherineCox/anvil-portal/internal/server"
	"github.com/KatherineCox/anvil-portal/internal/sorting"
	"github.com/KatherineCox/anvil-portal/internal/source"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "health" {
		os.Exit(healthCheck())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.GetString("ANVIL_LOG_LEVEL", "info"),
		Format: cfg.GetString("ANVIL_LOG_FORMAT", "json"),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create export store", zap.Error(err))
	}

	m := metrics.New("anvil-dashboard")
	files := source.NewFiles(store, logger, m)

	resolver := accession.NewClient(
		cfg.GetString("ANVIL_RESOLVER_URL", ""),
		time.Duration(cfg.GetInt("ANVIL_RESOLVER_TIMEOUT_SECONDS", 30))*time.Second,
		logger,
	)

	pipeline := ingest.NewPipeline(files, resolver, sorting.NewService(), logger, m,
		cfg.GetInt("ANVIL_INGEST_PARALLELISM", 0))

	srv := server.New(pipeline, logger,
		time.Duration(cfg.GetInt("ANVIL_INGEST_TIMEOUT_SECONDS", 0))*time.Second,
		corsOrigins(cfg))

	port := cfg.GetString("PORT", "8080")
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: srv.Routes(),
	}

	logger.Info("AnVIL dashboard API starting", zap.String("port", port))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func buildStore(cfg *config.Config, logger *zap.Logger) (source.Store, error) {
	if cfg.GetString("ANVIL_STORE", "local") == "s3" {
		return source.NewS3Store(cfg.GetS3Config(), logger)
	}
	return source.NewLocalStore(cfg.GetString("ANVIL_DATA_DIR", "data")), nil
}

func corsOrigins(cfg *config.Config) []string {
	raw := cfg.GetString("ANVIL_CORS_ORIGINS", "")
	if raw == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func healthCheck() int {
	logger := logging.NewDefault()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return 1
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to create export store", zap.Error(err))
		return 1
	}

	if err := store.Ping(context.Background()); err != nil {
		logger.Error("Health check failed", zap.Error(err))
		return 1
	}

	return 0
}
