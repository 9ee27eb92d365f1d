package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollpulse/internal/cache"
	"pollpulse/internal/cache/pollcache"
	"pollpulse/internal/config"
	"pollpulse/internal/http"
	"pollpulse/internal/logger"
	"pollpulse/internal/models"
	"pollpulse/internal/pollAnalysis"
	"pollpulse/internal/provider"
	"pollpulse/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection for logging
	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	// Initialize logger
	appLogger := logger.NewDatabaseLogger(db)
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting PollPulse Aggregation API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":       cfg.Port,
			"cache_type": cfg.CacheType,
			"cache_ttl":  cfg.PollCacheTTL.Seconds(),
		},
	})

	// Initialize cache backend and the poll cache on top of it
	cacheService, err := initializeCache(cfg)
	if err != nil {
		appLogger.LogError(
			startupCtx,
			"cache_init",
			"",
			"Failed to initialize cache",
			err,
			models.LogSeverityHigh,
			nil,
		)
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	pollCache := pollcache.New(cacheService, cfg.PollCacheTTL)

	// Initialize upstream providers in priority order, plus the synthetic
	// fallback generator
	providers := []provider.Fetcher{
		provider.NewVoteHub(cfg.VoteHubBaseURL, cfg.VoteHubAPIKey, cfg.ProviderTimeout),
		provider.NewBallotBeat(cfg.BallotBeatBaseURL, cfg.BallotBeatAPIKey, cfg.ProviderTimeout),
	}
	synthetic := provider.NewSynthetic(cfg.SyntheticPollCount, time.Now().UnixNano())

	chain := provider.NewChain(providers, synthetic, appLogger, cfg.ProviderTimeout)

	rateLimiter := ratelimit.NewTwoTierRateLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)

	// Initialize service
	analysisService := pollAnalysis.NewService(
		chain,
		pollCache,
		appLogger,
		cfg.AverageWindowDays,
		cfg.TrendWindowDays,
	)

	// Initialize HTTP handler
	handler := http.NewHandler(analysisService, appLogger)

	// Initialize server
	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(
				context.Background(),
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 PollPulse Aggregation API server started on %s\n", addr)
	fmt.Println("📋 Available endpoints:")
	fmt.Println("  GET    /health                          - Health check")
	fmt.Println("  GET    /api/polls/{category}            - Merged poll records")
	fmt.Println("  GET    /api/polls/{category}/average    - Weighted running average")
	fmt.Println("  GET    /api/polls/{category}/series     - Time-series table")
	fmt.Println("  GET    /api/cache/stats                 - Cache statistics")
	fmt.Println("  DELETE /api/cache/{key}                 - Invalidate one cache key")
	fmt.Println("  DELETE /api/cache                       - Clear the cache")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(
			ctx,
			logger.OpServerShutdown,
			"",
			"Server shutdown error",
			err,
			models.LogSeverityMedium,
			nil,
		)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
		fmt.Println("✅ Server shutdown completed")
	}

	if err := cacheService.Close(); err != nil {
		log.Printf("Cache close error: %v", err)
	}
}

func initializeCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "memory":
		return cache.NewMemoryCache(cfg.CacheSweepInterval), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
