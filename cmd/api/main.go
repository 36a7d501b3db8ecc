package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmaquote/pharmaquote-backend/api/controllers"
	"github.com/pharmaquote/pharmaquote-backend/api/routes"
	"github.com/pharmaquote/pharmaquote-backend/internal/analytics"
	"github.com/pharmaquote/pharmaquote-backend/internal/brands"
	"github.com/pharmaquote/pharmaquote-backend/internal/customertypes"
	"github.com/pharmaquote/pharmaquote-backend/internal/pricing"
	"github.com/pharmaquote/pharmaquote-backend/internal/quotes"
	"github.com/pharmaquote/pharmaquote-backend/pkg/config"
	"github.com/pharmaquote/pharmaquote-backend/pkg/db"
	"github.com/pharmaquote/pharmaquote-backend/pkg/instance"
	"github.com/pharmaquote/pharmaquote-backend/pkg/logger"
	"github.com/pharmaquote/pharmaquote-backend/pkg/metrics"
	"github.com/pharmaquote/pharmaquote-backend/pkg/migrate"
	"github.com/pharmaquote/pharmaquote-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; the analytics cache degrades to direct queries
	// without it.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, analytics caching disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	pricingRepo := pricing.NewRepository(dbClient.DB())
	pricingService := pricing.NewService(pricingRepo)

	brandsService := brands.NewService(brands.NewRepository(dbClient.DB()))
	customerTypesService := customertypes.NewService(customertypes.NewRepository(dbClient.DB()))
	quotesService := quotes.NewService(
		quotes.NewRepository(dbClient.DB()),
		dbClient,
		pricingRepo,
		cfg.Quotes,
	)

	var analyticsCache redis.Cache
	if redisClient != nil {
		analyticsCache = redisClient
	}
	analyticsService := analytics.NewService(
		analytics.NewRepository(dbClient.DB()),
		analyticsCache,
		cfg.FeatureFlags.AnalyticsCacheTTL,
		logg,
	)

	pingers := map[string]controllers.Pinger{"database": dbClient}
	if redisClient != nil {
		pingers["redis"] = redisClient
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		httpMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		pingers,
		routes.Services{
			Pricing:       pricingService,
			Brands:        brandsService,
			CustomerTypes: customerTypesService,
			Quotes:        quotesService,
			Analytics:     analyticsService,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		ctx = logg.WithField(ctx, "signal", sig.String())
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
