package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/config"
	"github.com/stemsi/mockview-backend/internal/database"
	"github.com/stemsi/mockview-backend/internal/events"
	"github.com/stemsi/mockview-backend/internal/handler"
	"github.com/stemsi/mockview-backend/internal/logger"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/repository"
	"github.com/stemsi/mockview-backend/internal/router"
	"github.com/stemsi/mockview-backend/internal/service"
	"github.com/stemsi/mockview-backend/internal/validator"
	"github.com/stemsi/mockview-backend/internal/worker"
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
		Dur("tick_interval", cfg.TickInterval).
		Msg("Starting MockView Backend")

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

	// ─── Connect to NATS (optional) ────────────────────────────────────
	var publisher events.Publisher = events.NopPublisher{}
	nc, err := database.NewNATSConn(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	if nc != nil {
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	sessionRepo := repository.NewInterviewSessionRepository(pool)
	sessionCache := repository.NewSessionCache(rdb, cfg.SnapshotTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	interviewService := service.NewInterviewService(sessionRepo, sessionCache, publisher, service.InterviewOptions{
		TickInterval: cfg.TickInterval,
		IdleTTL:      cfg.IdleSessionTTL,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Interview: handler.NewInterviewHandler(interviewService, authService, log),
		WS:        handler.NewWSHandler(interviewService, sessionCache, log, cfg.AllowedOrigins),
		SSE:       handler.NewSSEHandler(interviewService, sessionCache, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	answerWorker := worker.NewAnswerWorker(sessionRepo, rdb, log)
	resultWorker := worker.NewResultWorker(sessionRepo, rdb, log)
	createLimiter := middleware.NewRateLimiter(cfg.CreateRateLimit, time.Minute, nil)

	workers.Add(2)
	go func() { defer workers.Done(); answerWorker.Start(workerCtx) }()
	go func() { defer workers.Done(); resultWorker.Start(workerCtx) }()
	go createLimiter.Run(workerCtx)
	go interviewService.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, createLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop every interview timer so no new work is queued.
	interviewService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
