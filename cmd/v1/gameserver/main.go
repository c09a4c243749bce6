package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/TheZedxD/HomeGameServer/internal/v1/auth"
	"github.com/TheZedxD/HomeGameServer/internal/v1/config"
	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/game/checkers"
	"github.com/TheZedxD/HomeGameServer/internal/v1/health"
	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"github.com/TheZedxD/HomeGameServer/internal/v1/middleware"
	"github.com/TheZedxD/HomeGameServer/internal/v1/monitor"
	"github.com/TheZedxD/HomeGameServer/internal/v1/ratelimit"
	"github.com/TheZedxD/HomeGameServer/internal/v1/room"
	"github.com/TheZedxD/HomeGameServer/internal/v1/store"
	"github.com/TheZedxD/HomeGameServer/internal/v1/transport"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

func main() {
	// Load .env for local development. Paths cover running from the repo
	// root and from the package directory.
	envPaths := []string{".env", "../../../.env", "../../.env"}
	var envLoaded bool
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			slog.Info("Loaded environment from", "path", path)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.DevelopmentMode); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if cfg.DevelopmentMode {
		slog.Info("Running in DEVELOPMENT MODE")
	}

	// --- Authentication ---
	skipAuth := cfg.SkipAuth
	if !skipAuth && cfg.DevelopmentMode && (cfg.AuthDomain == "" || cfg.AuthAudience == "") {
		slog.Warn("Development mode: auth credentials missing, auto-enabling SKIP_AUTH")
		skipAuth = true
	}

	var validator types.TokenValidator
	if skipAuth {
		slog.Warn("Authentication DISABLED - do not use in production")
		validator = &auth.MockValidator{}
	} else {
		if cfg.AuthDomain == "" || cfg.AuthAudience == "" {
			slog.Error("AUTH_DOMAIN and AUTH_AUDIENCE must be set when SKIP_AUTH=false")
			os.Exit(1)
		}
		authValidator, err := auth.NewValidator(context.Background(), cfg.AuthDomain, cfg.AuthAudience)
		if err != nil {
			slog.Error("Failed to create auth validator", "error", err)
			os.Exit(1)
		}
		slog.Info("Auth validator initialized", "domain", cfg.AuthDomain, "audience", cfg.AuthAudience)
		validator = authValidator
	}

	// --- Snapshot store ---
	// Redis when configured, otherwise in-memory. A Redis connection
	// failure falls back rather than refusing to start; snapshots are
	// best-effort by design.
	var (
		repo        store.Repository
		redisStore  *store.Redis
		redisClient *redis.Client
	)
	if cfg.RedisEnabled {
		redisStore, err = store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("Failed to connect to Redis, using in-memory snapshots", "error", err)
			repo = store.NewMemory()
		} else {
			slog.Info("Redis snapshot store initialized", "addr", cfg.RedisAddr)
			repo = redisStore
			redisClient = redisStore.Client()
		}
	} else {
		slog.Info("Running with in-memory snapshot store (Redis disabled)")
		repo = store.NewMemory()
	}

	// --- Rules plugins ---
	registry := game.NewRegistry()
	if err := registry.Register(checkers.Plugin()); err != nil {
		slog.Error("Failed to register checkers plugin", "error", err)
		os.Exit(1)
	}

	// --- Engine ---
	manager := room.NewManager(registry, repo, room.Config{
		GraceWindow:   cfg.GraceWindow,
		IdleWindow:    cfg.IdleWindow,
		SweepInterval: cfg.SweepInterval,
	})
	manager.Run()

	// --- Gateway ---
	limiter, err := ratelimit.New(cfg, redisClient)
	if err != nil {
		slog.Error("Failed to create rate limiter", "error", err)
		os.Exit(1)
	}

	hub := transport.NewHub(manager, registry, validator, limiter, transport.Options{
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// --- Resource monitor ---
	sampler := monitor.New(manager.Counts, hub.BroadcastServerMetrics, nil, 0)
	hub.SetLatencyObserver(sampler.Latency().Observe)

	hub.Run()
	sampler.Run()

	// --- HTTP server ---
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	router.Use(cors.New(corsConfig))

	router.GET("/ws", hub.ServeWs)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var pinger health.Pinger
	if redisStore != nil {
		pinger = redisStore
	}
	healthHandler := health.NewHandler(pinger)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)

	port, err := config.PickPort(cfg)
	if err != nil {
		slog.Error("No free port available", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		slog.Info("Game server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to run server", "error", err)
			_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sampler.Shutdown()

	if err := hub.Shutdown(ctx); err != nil {
		slog.Error("Error during gateway shutdown", "error", err)
	}
	if err := manager.Shutdown(ctx); err != nil {
		slog.Error("Error during engine shutdown", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("Failed to close snapshot store", "error", err)
	}

	slog.Info("Server exiting")
}
