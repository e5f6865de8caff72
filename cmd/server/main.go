package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/config"
	"github.com/SAP-F-2025/survey-service/internal/handlers"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/repositories/memory"
	"github.com/SAP-F-2025/survey-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/SAP-F-2025/survey-service/internal/validator"
	"github.com/SAP-F-2025/survey-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development").LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	repo, err := openRepository(cfg, logger)
	if err != nil {
		logger.LogError(err, "Failed to initialize storage", "driver", cfg.StorageDriver)
		os.Exit(1)
	}

	var snapshots repositories.SnapshotSource
	if cfg.RedisURL != "" && cfg.SnapshotCacheTTL > 0 {
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.LogError(err, "Failed to connect to redis")
			os.Exit(1)
		}
		defer client.Close()
		snapshotCache := cache.NewSnapshotCache(repo.Form(), cache.NewRedisCache(client, slogger), cfg.SnapshotCacheTTL, slogger)
		if err := snapshotCache.InvalidateAll(context.Background()); err != nil {
			logger.Warn("Failed to flush snapshot cache", "error", err)
		}
		snapshots = snapshotCache
		logger.Info("Snapshot cache enabled", "ttl", cfg.SnapshotCacheTTL)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	reports := services.NewReportService(repo, snapshots, slogger, services.SystemClock)
	serviceManager := services.NewServiceManager(
		services.NewSubmissionService(repo, publisher, slogger, validator.New(), services.SystemClock),
		reports,
		services.NewReportExportService(reports, slogger),
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Survey service listening", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server error")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
	}
	logger.Info("Survey service stopped")
}

func openRepository(cfg *config.Config, logger utils.Logger) (repositories.Repository, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		if cfg.MemorySeedFile == "" {
			logger.Warn("Using in-memory storage without MEMORY_SEED_FILE; no forms are defined")
			return store, nil
		}
		n, err := store.LoadSeedFile(cfg.MemorySeedFile)
		if err != nil {
			return nil, err
		}
		logger.Warn("Using in-memory storage; data is lost on restart", "seed", cfg.MemorySeedFile, "forms", n)
		return store, nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return nil, err
	}
	return postgres.NewRepository(db), nil
}
