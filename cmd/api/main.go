package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barsamweb/reviews/internal/auth"
	"github.com/barsamweb/reviews/internal/cache"
	"github.com/barsamweb/reviews/internal/config"
	"github.com/barsamweb/reviews/internal/database"
	"github.com/barsamweb/reviews/internal/logging"
	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/barsamweb/reviews/internal/notify"
	"github.com/barsamweb/reviews/internal/ratelimit"
	"github.com/barsamweb/reviews/internal/reviews"
	"github.com/barsamweb/reviews/internal/server"
	"github.com/barsamweb/reviews/internal/store"
	"github.com/barsamweb/reviews/migrations"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(&cfg.Logging, cfg.Server.Env)

	log.Info().
		Str("env", cfg.Server.Env).
		Msg("Starting reviews API server")

	// Initialize database connection
	db, err := database.New(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.URL, migrations.Files, "."); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Redis backs the submission rate limiter; the service degrades to
	// unlimited submissions without it rather than refusing to start
	var limiter reviews.Limiter
	redis, err := cache.New(cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, submission rate limiting disabled")
	} else {
		defer redis.Close()
		limiter = ratelimit.NewSubmissionLimiter(redis, cfg.RateLimit.SubmissionWindow)
	}

	// Initialize Prometheus metrics
	monitoring.Init()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort)
	}

	// Wire up services
	pg := store.NewPostgres(db.Pool)

	var notifier reviews.Notifier
	webhook := notify.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Timeout)
	if webhook.Enabled() {
		notifier = webhook
		log.Info().Msg("Submission notification webhook enabled")
	}

	reviewService := reviews.NewService(
		pg,
		cfg.Cache.TTL,
		cfg.Cache.PageSize,
		limiter,
		notifier,
		logging.NewLogger("reviews"),
	)
	authService := auth.NewService(pg, &cfg.JWT)

	srv := server.NewAPIServer(cfg, reviewService, authService)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Msg("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().
		Str("signal", sig.String()).
		Msg("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().
		Int("port", port).
		Msg("Prometheus metrics server listening")

	if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Metrics server error")
	}
}
