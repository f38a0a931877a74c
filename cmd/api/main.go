package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/videobooker-api/cmd/mainconfig"
	"github.com/wolfman30/videobooker-api/internal/api/router"
	"github.com/wolfman30/videobooker-api/internal/app/bootstrap"
	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/bookinglink"
	"github.com/wolfman30/videobooker-api/internal/catalog"
	appconfig "github.com/wolfman30/videobooker-api/internal/config"
	"github.com/wolfman30/videobooker-api/internal/handoff"
	httpmiddleware "github.com/wolfman30/videobooker-api/internal/http/middleware"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/internal/observability/metrics"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting videobooker API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"integration_store", cfg.IntegrationStore,
	)

	ctx := context.Background()
	deps, err := connectBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect backends", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	handler, limiter, err := buildServer(ctx, cfg, deps, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	stopSweep := make(chan struct{})
	go limiter.Run(time.Minute, stopSweep)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	close(stopSweep)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// backends holds the optional external clients.
type backends struct {
	Redis *redis.Client
	Pool  *pgxpool.Pool
	AWS   *mainconfig.AWSClients
}

func (b *backends) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}

func connectBackends(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*backends, error) {
	awsClients, err := mainconfig.NewAWSClients(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &backends{
		Redis: bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		Pool:  bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger),
		AWS:   awsClients,
	}, nil
}

// setupMetrics registers the booking metrics and Go/process collectors on a
// private registry and returns its scrape handler.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewBookingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), m
}

// buildServer wires stores, domain services and handlers into the router.
func buildServer(ctx context.Context, cfg *appconfig.Config, deps *backends, logger *logging.Logger) (http.Handler, *httpmiddleware.RateLimiter, error) {
	if deps == nil {
		deps = &backends{}
	}
	awsClients := deps.AWS
	if awsClients == nil {
		awsClients = &mainconfig.AWSClients{}
	}

	integrationStore, err := bootstrap.BuildIntegrationStore(cfg, deps.Redis, awsClients.DynamoDB)
	if err != nil {
		return nil, nil, err
	}
	metricsHandler, bookingMetrics := setupMetrics()

	registry := integrations.NewRegistry(integrationStore, logger, integrations.WithObserver(bookingMetrics))
	services := catalog.New(bootstrap.BuildCatalogStore(deps.Pool), logger)
	cache := bootstrap.BuildMappingCache(cfg, deps.Redis, logger)

	if cfg.SeedDemoData {
		if err := integrations.SeedDemo(ctx, registry); err != nil {
			return nil, nil, fmt.Errorf("seed integrations: %w", err)
		}
		if err := services.SeedDemo(ctx); err != nil {
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	previews := bookinglink.NewService(bookinglink.Config{
		Records:  registry,
		Services: services,
		Mappings: cache,
		Slots:    availability.NewSampleSource(),
		Tenant:   cfg.BookingTenant,
		Metrics:  bookingMetrics,
		Logger:   logger,
	})
	composer := handoff.NewComposer(handoff.DefaultTemplates(), cfg.Location())
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := router.New(&router.Config{
		Logger:             logger,
		Integrations:       integrations.NewHandler(registry, bootstrap.BuildEventPublisher(cfg, awsClients.SQS), logger),
		Catalog:            catalog.NewHandler(services, logger),
		Mappings:           mapping.NewHandler(registry, cache, logger),
		BookingLinks:       bookinglink.NewHandler(previews, logger),
		Handoff:            handoff.NewHandler(previews, composer, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		ReadinessChecks:    readinessChecks(deps),
	})
	return r, limiter, nil
}

func readinessChecks(deps *backends) map[string]router.ReadinessCheck {
	checks := make(map[string]router.ReadinessCheck)
	if deps.Redis != nil {
		client := deps.Redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	if deps.Pool != nil {
		pool := deps.Pool
		checks["postgres"] = pool.Ping
	}
	return checks
}
