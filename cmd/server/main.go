package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/cache"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/database"
	"github.com/stemsi/qrattend-backend/internal/handler"
	"github.com/stemsi/qrattend-backend/internal/logger"
	"github.com/stemsi/qrattend-backend/internal/metrics"
	"github.com/stemsi/qrattend-backend/internal/netinfo"
	"github.com/stemsi/qrattend-backend/internal/qr"
	"github.com/stemsi/qrattend-backend/internal/repository"
	"github.com/stemsi/qrattend-backend/internal/roster"
	"github.com/stemsi/qrattend-backend/internal/router"
	"github.com/stemsi/qrattend-backend/internal/service"
	"github.com/stemsi/qrattend-backend/internal/validator"
	"github.com/stemsi/qrattend-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageBackend).
		Str("cache", cfg.CacheBackend).
		Str("ssid_source", cfg.SSIDSource).
		Msg("Starting QR Attendance Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Roster ───────────────────────────────────────────────────
	ros, err := roster.Load(cfg.RosterFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load roster")
	}
	log.Info().
		Int("students", len(ros.Students)).
		Int("subjects", len(ros.Subjects)).
		Int("teachers", len(ros.Teachers)).
		Msg("Roster loaded")

	// ─── Metrics ───────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	checks := map[string]handler.HealthCheck{}

	// ─── Cache: login sessions + live feed ─────────────────────────────
	var (
		sessionCache cache.SessionStore
		broker       cache.Broker
	)
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		sessionCache = cache.NewRedisSessions(rdb)
		broker = cache.NewRedisBroker(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	case config.CacheMemory:
		sessionCache = cache.NewMemorySessions()
		broker = cache.NewMemoryBroker()
	default:
		log.Fatal().Str("cache", cfg.CacheBackend).Msg("Unknown cache backend")
	}

	feed := service.NewLiveFeed(broker, log)

	// ─── Storage ───────────────────────────────────────────────────────
	var (
		store        service.AttendanceStore
		sessionStore service.SessionStore
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if cfg.MigrateOnStart {
			if err := database.MigrateUp(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
				log.Fatal().Err(err).Msg("Failed to migrate database")
			}
		}

		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		stats, err := repository.SyncRoster(ctx,
			repository.NewStudentRepository(pool),
			repository.NewClassRepository(pool),
			ros,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to sync roster")
		}
		log.Info().
			Int("students", stats.Students).
			Int("classes", stats.Classes).
			Int("enrollments", stats.Enrollments).
			Msg("Roster synced")

		sessionRepo := repository.NewSessionRepository(pool)
		store = repository.NewAttendanceRepository(pool, sessionRepo, ros.Subjects)
		sessionStore = sessionRepo
		checks["postgres"] = pool.Ping
	case config.StorageCSV:
		sheet := repository.NewSheetRepository(cfg.CSVFile)
		if err := sheet.Ensure(ros); err != nil {
			log.Fatal().Err(err).Str("path", cfg.CSVFile).Msg("Failed to prepare attendance sheet")
		}
		log.Info().Str("path", sheet.Path()).Msg("Attendance sheet ready")
		store = sheet
	default:
		log.Fatal().Str("storage", cfg.StorageBackend).Msg("Unknown storage backend")
	}

	// ─── Network check ─────────────────────────────────────────────────
	var probe netinfo.Prober
	if cfg.SSIDSource == config.SSIDSourceLocal {
		probe = netinfo.NewCommandProber()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, ros, sessionCache, m)
	attendanceService := service.NewAttendanceService(ros, store, probe, feed, m, log)
	sessionService := service.NewClassSessionService(sessionStore, feed, m, log)
	qrService := service.NewQRService(ros, qr.NewGenerator(cfg.QRDir, cfg.QRSize), m, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Attendance: handler.NewAttendanceHandler(attendanceService, log),
		QR:         handler.NewQRHandler(qrService, log),
		Session:    handler.NewSessionHandler(sessionService, log),
		WS:         handler.NewWSHandler(feed, log, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(map[string]string{
			"storage":     cfg.StorageBackend,
			"cache":       cfg.CacheBackend,
			"ssid_source": cfg.SSIDSource,
		}, checks, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workersDone := make(chan struct{})

	if sessionService.Supported() {
		sessionWorker := worker.NewSessionWorker(sessionService, cfg.SessionSweepInterval, log)
		go func() {
			defer close(workersDone)
			sessionWorker.Start(workerCtx)
		}()
	} else {
		close(workersDone)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, metrics.Handler(registry), cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	// 2. Stop background workers and wait for the current sweep.
	workerCancel()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Workers did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
