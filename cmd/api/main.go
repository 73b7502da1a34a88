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

	"github.com/angelmondragon/tillpoint/api/routes"
	"github.com/angelmondragon/tillpoint/internal/entitlements"
	"github.com/angelmondragon/tillpoint/internal/promos"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/db"
	"github.com/angelmondragon/tillpoint/pkg/env"
	"github.com/angelmondragon/tillpoint/pkg/instance"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/metrics"
	"github.com/angelmondragon/tillpoint/pkg/migrate"
	"github.com/angelmondragon/tillpoint/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
	}

	tenantRepo := tenants.NewRepository(dbClient.DB())
	entParams := entitlements.ServiceParams{
		Repo:    entitlements.NewRepository(dbClient.DB()),
		Tenants: tenantRepo,
		Metrics: metrics.NewEntitlementMetrics(registry),
		Logger:  logg,
		Config:  cfg.Entitlements,
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		cache, err := entitlements.NewRedisCache(redisClient, cfg.Entitlements.CacheTTL)
		if err != nil {
			logg.Error(ctx, "failed to create entitlements cache", err)
			os.Exit(1)
		}
		entParams.Cache = cache
		entParams.Locker = redisClient
		deps.Redis = redisClient
		deps.RateStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, entitlements cache and quote rate limit disabled")
	}

	entitlementsService, err := entitlements.NewService(entParams)
	if err != nil {
		logg.Error(ctx, "failed to create entitlements service", err)
		os.Exit(1)
	}
	deps.Entitlements = entitlementsService

	deps.Tenants, err = tenants.NewService(tenantRepo)
	if err != nil {
		logg.Error(ctx, "failed to create tenant service", err)
		os.Exit(1)
	}

	deps.Promos, err = promos.NewService(promos.ServiceParams{
		Repo:    promos.NewRepository(dbClient.DB()),
		Metrics: metrics.NewPricingMetrics(registry),
		Logger:  logg,
		Config:  cfg.Pricing,
	})
	if err != nil {
		logg.Error(ctx, "failed to create promo service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}
