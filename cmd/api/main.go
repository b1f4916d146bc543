package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/leadpilot/leadpilot/internal/api/router"
	appconfig "github.com/leadpilot/leadpilot/internal/config"
	"github.com/leadpilot/leadpilot/internal/leads"
	"github.com/leadpilot/leadpilot/internal/observability/metrics"
	"github.com/leadpilot/leadpilot/internal/users"
	"github.com/leadpilot/leadpilot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadpilot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// Initialize repositories
	var leadsRepo leads.Repository
	var usersRepo users.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		leadsRepo = leads.NewPostgresRepository(pool)
		usersRepo = users.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		leadsRepo = leads.NewInMemoryRepository()
		usersRepo = users.NewInMemoryRepository()
	}

	// Refresh tokens live in Redis when available
	var refreshStore users.RefreshStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		refreshStore = users.NewRedisRefreshStore(client)
	} else {
		logger.Warn("REDIS_ADDR not set, refresh tokens kept in memory")
		refreshStore = users.NewMemoryRefreshStore()
	}

	tokens := users.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, refreshStore)

	// Initialize handlers
	leadsHandler := leads.NewHandler(leadsRepo, logger)
	usersHandler := users.NewHandler(usersRepo, tokens, logger)

	httpMetrics := metrics.NewHTTPMetrics()

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		UsersHandler:       usersHandler,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSOrigins,
		MetricsHandler:     httpMetrics.Handler(),
		MetricsMiddleware:  httpMetrics.Middleware(),
		MaxBodyBytes:       cfg.MaxBodyBytes,
		AuthRatePerSecond:  cfg.AuthRateLimit,
		AuthRateBurst:      cfg.AuthRateBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
