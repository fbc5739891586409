package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"creativesync/internal/apiclient"
	"creativesync/internal/cache"
	"creativesync/internal/config"
	"creativesync/internal/http"
	"creativesync/internal/imagecheck"
	"creativesync/internal/jobs"
	"creativesync/internal/logger"
	"creativesync/internal/models"
	"creativesync/internal/normalizer"
	"creativesync/internal/parsing"
	"creativesync/internal/provider"
	"creativesync/internal/ratelimit"
	"creativesync/internal/storage"
	"creativesync/internal/synchronizer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection for logging
	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to log database: %v", err)
	}
	defer db.Close()

	// Initialize logger
	appLogger := logger.NewDatabaseLogger(db)
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting Creative Sync pipeline", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"ops_port":        cfg.OpsPort,
			"cache_type":      cfg.CacheType,
			"cache_ttl":       cfg.CacheTTL.Seconds(),
			"sync_interval_s": cfg.SyncInterval.Seconds(),
		},
	})

	// Initialize cache
	cacheService, err := initializeCache(cfg)
	if err != nil {
		appLogger.LogError(startupCtx, "cache_init", "", "Failed to initialize cache", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Initialize creatives store
	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		appLogger.LogError(startupCtx, "storage_init", "", "Failed to initialize creative store", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize creative store: %v", err)
	}
	defer store.Close()

	// Reference lookups served through the cache
	lookups := normalizer.NewLookup(store, cacheService, cfg.CacheTTL)
	rowBuilder := provider.NewRowBuilder(lookups)

	// Shared creative validation
	imageChecker := imagecheck.NewHTTPValidator(cfg.ImageCheckTimeout)
	validator := provider.NewValidator(imageChecker, cfg.ImageValidationEnabled, cfg.ImageValidationFailOpen)

	// Enrichment job queue; pipelines run without one if redis is down
	var dispatcher jobs.Dispatcher
	redisDispatcher, err := jobs.NewRedisDispatcher(cfg.RedisURL, cfg.EnrichmentQueue)
	if err != nil {
		appLogger.LogError(startupCtx, logger.OpDispatchJobs, "", "Enrichment queue unavailable, jobs disabled", err, models.LogSeverityMedium, nil)
		dispatcher = jobs.NopDispatcher{}
	} else {
		dispatcher = redisDispatcher
		defer redisDispatcher.Close()
	}

	// One ingestion pipeline per provider. FeedHouse writes basic rows and
	// leaves completion to enrichment jobs, but only while the queue is up.
	_, enrichmentUp := dispatcher.(*jobs.RedisDispatcher)
	pipelines := map[string]parsing.Service{
		models.SourcePushHouse: buildPipeline(cfg.PushHouse, provider.NewPushHouseAdapter(), validator, rowBuilder, store, dispatcher, false, appLogger),
		models.SourceFeedHouse: buildPipeline(cfg.FeedHouse, provider.NewFeedHouseAdapter(), validator, rowBuilder, store, dispatcher, enrichmentUp, appLogger),
	}

	rateLimiter := ratelimit.NewTwoTierRateLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)

	// Initialize ops HTTP surface
	handler := http.NewHandler(pipelines, appLogger)
	addr := ":" + cfg.OpsPort
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
				"Ops server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Ops server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 Creative Sync started, ops API on %s\n", addr)
	fmt.Println("📋 Available endpoints:")
	fmt.Println("  GET  /health                        - Health check")
	fmt.Println("  GET  /api/runs/last                 - Last run report per source")
	fmt.Println("  GET  /api/test-connection/{source}  - Probe a provider API")
	fmt.Println("  POST /api/dry-run/{source}          - Fetch and diff without writes")

	// Run the scheduler loop until interrupted
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	var schedulerDone sync.WaitGroup
	schedulerDone.Add(1)
	go func() {
		defer schedulerDone.Done()
		runScheduler(schedulerCtx, cfg, pipelines, store, appLogger)
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down...")

	stopScheduler()
	schedulerDone.Wait()

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(ctx, logger.OpServerShutdown, "", "Server shutdown error", err, models.LogSeverityMedium, nil)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Shutdown completed successfully", nil)
		fmt.Println("✅ Shutdown completed")
	}
}

// buildPipeline wires the fetch-validate-sync chain for one provider
func buildPipeline(
	providerCfg config.ProviderConfig,
	adapter provider.Adapter,
	validator *provider.Validator,
	rowBuilder *provider.RowBuilder,
	store storage.CreativeStore,
	dispatcher jobs.Dispatcher,
	hybridWrites bool,
	appLogger logger.Service,
) parsing.Service {
	client := apiclient.NewHTTPClient(providerCfg, adapter, validator, appLogger)

	var syncService synchronizer.Service
	if hybridWrites {
		syncService = synchronizer.NewHybridSynchronizer(adapter.Source(), store, rowBuilder, appLogger)
	} else {
		syncService = synchronizer.NewHashSynchronizer(adapter.Source(), store, rowBuilder, appLogger)
	}

	return parsing.NewPipeline(client, syncService, dispatcher, appLogger, providerCfg.StatusFilter, providerCfg.StartPage)
}

// runScheduler runs every pipeline once immediately and then on each
// SYNC_INTERVAL tick, providers in parallel. Long-inactive creatives are
// cleaned up after each cycle.
func runScheduler(ctx context.Context, cfg *config.Config, pipelines map[string]parsing.Service, store storage.CreativeStore, appLogger logger.Service) {
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	runAll := func() {
		var wg sync.WaitGroup
		for source, pipeline := range pipelines {
			wg.Add(1)
			go func(source string, pipeline parsing.Service) {
				defer wg.Done()

				runCtx := logger.WithLogEvent(ctx, logger.NewInternalLogEvent())
				if _, err := pipeline.ParseAndSync(runCtx); err != nil {
					appLogger.LogError(runCtx, logger.OpParseAndSync, source,
						"Scheduled ingestion run failed", err, models.LogSeverityHigh, nil)
				}
			}(source, pipeline)
		}
		wg.Wait()

		cleanupCtx := logger.WithLogEvent(ctx, logger.NewInternalLogEvent())
		removed, err := store.CleanupInactiveBefore(cleanupCtx, time.Now().Add(-cfg.CleanupAfter))
		if err != nil {
			appLogger.LogError(cleanupCtx, logger.OpCleanup, "",
				"Inactive creative cleanup failed", err, models.LogSeverityMedium, nil)
		} else if removed > 0 {
			appLogger.LogInfo(cleanupCtx, logger.OpCleanup, "Removed long-inactive creatives",
				map[string]interface{}{"removed": removed})
		}
	}

	runAll()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runAll()
		}
	}
}

func initializeCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
