package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kondax-backend/config"
	_ "kondax-backend/docs" // Important for Swagger
	"kondax-backend/internal/delivery/http/middleware"
	v1 "kondax-backend/internal/delivery/http/v1"
	"kondax-backend/internal/domain"
	"kondax-backend/internal/repository/cache"
	"kondax-backend/internal/repository/postgres"
	"kondax-backend/internal/repository/sanity"
	"kondax-backend/internal/usecase"
	"kondax-backend/pkg/database"
	"kondax-backend/pkg/email"
	"kondax-backend/pkg/logger"
	"kondax-backend/pkg/redis"
	"kondax-backend/pkg/security"
	"kondax-backend/pkg/validation"
)

// @title           KONDAX Site API
// @version         1.0
// @description     Content and contact backend for the KONDAX corporate site.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting kondax backend", "port", cfg.Port, "content_backend", cfg.ContentBackend)

	env := "development"
	if os.Getenv("GIN_MODE") == "release" {
		env = "production"
	}
	audit := security.InitSecurityLogger("kondax-backend", env)
	defer func() { _ = audit.Sync() }()

	// 3. Setup Redis (optional)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis not configured, caching disabled and rate limits are per instance")
		} else {
			logger.Log.Error("Redis unavailable, continuing without it", "error", err)
		}
	}
	defer redis.Close()

	// 4. Setup Content Store
	probes := map[string]usecase.HealthProbe{"redis": nil}
	if redis.Client() != nil {
		probes["redis"] = redis.HealthCheck
	}

	var store domain.ContentRepository
	switch cfg.ContentBackend {
	case "postgres":
		dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		store = postgres.NewDocumentRepository(dbPool)
		probes["database"] = dbPool.Ping
	default:
		client, err := sanity.NewClient(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			UseCDN:     cfg.SanityUseCDN,
			Timeout:    cfg.SanityTimeout,
		})
		if err != nil {
			logger.Log.Error("Invalid Sanity configuration", "error", err)
			os.Exit(1)
		}
		store = sanity.NewContentRepository(client)
	}

	// Both backends store CDN asset references
	imageURL := sanity.ImageURLBuilder(cfg.SanityProjectID, cfg.SanityDataset)

	var contentCache domain.ContentCache
	if rdb := redis.Client(); rdb != nil {
		cached := cache.NewContentRepository(store, rdb, cfg.ContentCacheTTL)
		store = cached
		contentCache = cached
	}

	// 5. Setup Email
	sender, err := email.NewSender(cfg)
	if err != nil {
		logger.Log.Warn("Email delivery not configured - contact submissions will fail", "error", err)
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(sender, validation.New(), usecase.ContactConfig{
		From:        cfg.MailFrom,
		OperatorTo:  cfg.ContactEmailTo,
		SendTimeout: cfg.EmailTimeout,
	}, audit)
	contentUC := usecase.NewContentUsecase(store, imageURL, usecase.ContentConfig{
		Locales:      cfg.Locales,
		DefaultLimit: cfg.ContentDefaultLimit,
		MaxLimit:     cfg.ContentPageSizeMax,
	})
	sitemapUC := usecase.NewSitemapUsecase(store, cfg.SiteURL, cfg.Locales)
	healthUC := usecase.NewHealthUsecase(cfg.ContentBackend, probes)

	// 7. Setup Router
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	globalLimiter := middleware.NewRateLimiter(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window), redis.Client(), audit)
	defer globalLimiter.Close()
	contactLimiter := middleware.NewRateLimiter(middleware.ContactRateLimitConfig(cfg.ContactRateLimit, window), redis.Client(), audit)
	defer contactLimiter.Close()

	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		ContentUC: contentUC,
		SitemapUC: sitemapUC,
		HealthUC:  healthUC,
		Cache:     contentCache,
		Audit:     audit,
		Config:    cfg,

		GlobalLimiter:  globalLimiter,
		ContactLimiter: contactLimiter,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// long enough for an in-flight contact email to finish
	ctx, cancel := context.WithTimeout(context.Background(), cfg.EmailTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
