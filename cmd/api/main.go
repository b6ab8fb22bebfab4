package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiprate-backend/config"
	"shiprate-backend/internal/delivery/http/middleware"
	v1 "shiprate-backend/internal/delivery/http/v1"
	"shiprate-backend/internal/infrastructure/cache"
	"shiprate-backend/internal/pricing"
	"shiprate-backend/internal/repository/postgres"
	"shiprate-backend/internal/usecase"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/metrics"
	"shiprate-backend/pkg/storage"
	"shiprate-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

const serviceName = "shiprate-api"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database with pgx
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	catalogRepo := postgres.NewCatalogRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CacheCatalogTTL, 2*cfg.CacheCatalogTTL)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("shiprate")
	if err := m.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// --- Modules Initialization ---

	snapshot := usecase.NewCatalogSnapshot(catalogRepo, memCache, cfg.CacheCatalogTTL, m)
	resolver := pricing.NewResolver(pricing.Options{
		ClampDiscount:        cfg.PricingClampDiscount,
		MarginWarningPercent: cfg.PricingMarginWarningPercent,
	})

	// Warm the snapshot.
	if _, err := snapshot.Get(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial catalog load failed, will retry on first request")
	}

	// --- Storage Module (R2), optional import archive ---
	var archive usecase.Archiver
	if cfg.ArchiveEnabled() {
		r2Storage, err := storage.NewR2Storage(
			context.Background(),
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		archive = r2Storage
	} else {
		log.Info().Msg("R2 not configured, imported rate sheets will not be archived")
	}

	quoteUC := usecase.NewQuoteUsecase(snapshot, resolver, m)
	carrierUC := usecase.NewCarrierUsecase(snapshot)
	importUC := usecase.NewImportUsecase(catalogRepo, txManager, snapshot, archive, m)

	// Set up Router
	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Quote:   v1.NewQuoteHandler(quoteUC),
		Carrier: v1.NewCarrierHandler(carrierUC),
		Import:  v1.NewAdminImportHandler(importUC, cfg.MaxImportSizeMB),
		Health:  v1.NewHealthHandler(memCache),
		Metrics: metrics.Handler(registry),
	}, middleware.Admin)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Rate limiter: cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(m)(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, version(), cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}

func version() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "dev"
}
