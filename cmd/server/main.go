package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/database"
	"github.com/stemsi/edulink/internal/handler"
	"github.com/stemsi/edulink/internal/logger"
	"github.com/stemsi/edulink/internal/middleware"
	"github.com/stemsi/edulink/internal/repository"
	"github.com/stemsi/edulink/internal/router"
	"github.com/stemsi/edulink/internal/service"
	"github.com/stemsi/edulink/internal/validator"
	"github.com/stemsi/edulink/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EduLink registry")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	personRepo := repository.NewPersonRepository(pool)
	relationshipRepo := repository.NewRelationshipRepository(pool)
	flagRepo := repository.NewIdentityFlagRepository(pool)
	schoolRepo := repository.NewSchoolRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	statsCache := repository.NewStatisticsCache(rdb, cfg.StatsCacheTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	registry := service.NewRegistry(personRepo, relationshipRepo, statsCache, log)
	personService := service.NewPersonService(personRepo, flagRepo, log)
	studentService := service.NewStudentService(schoolRepo, studentRepo)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, stopWorkers := context.WithCancel(ctx)
	refreshDone := make(chan struct{})
	refreshWorker := worker.NewStatisticsRefreshWorker(rdb, registry.View, log)
	go func() {
		defer close(refreshDone)
		refreshWorker.Start(workerCtx)
	}()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
		Person:       handler.NewPersonHandler(registry, personService, log),
		Relationship: handler.NewRelationshipHandler(registry.Linker, log),
		School:       handler.NewSchoolHandler(studentService, log),
		IdentityFlag: handler.NewIdentityFlagHandler(personService, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	searchLimiter := middleware.NewRateLimiter(ctx, cfg.SearchRateLimit, time.Minute)
	r := router.SetupRouter(authService, handlers, searchLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	stopWorkers()
	<-refreshDone

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
