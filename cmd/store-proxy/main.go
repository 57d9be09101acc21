package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/cache"
	"github.com/Raisondetr3/store-sales-proxy/internal/config"
	"github.com/Raisondetr3/store-sales-proxy/internal/health"
	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/internal/repository"
	"github.com/Raisondetr3/store-sales-proxy/internal/service"
	grpcTransport "github.com/Raisondetr3/store-sales-proxy/internal/transport/grpc"
	httpTransport "github.com/Raisondetr3/store-sales-proxy/internal/transport/http"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/joho/godotenv"
)

const serviceName = "store-proxy"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	} else {
		slog.Info("Loaded configuration from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
		FileName: cfg.Logging.FileName,
	}

	if err := logger.SetupLogger(loggerCfg, serviceName); err != nil {
		panic("Failed to setup logger: " + err.Error())
	}

	logger.LogServiceStart(serviceName, map[string]interface{}{
		"http_port":            cfg.Server.HTTPPort,
		"grpc_port":            cfg.Server.GRPCPort,
		"grpc_enabled":         cfg.Server.GRPCEnabled,
		"backend_url":          logger.MaskURL(cfg.Backend.URL),
		"health_cache_ttl":     cfg.Backend.HealthCacheTTL.String(),
		"health_check_timeout": cfg.Backend.HealthCheckTimeout.String(),
		"log_level":            cfg.Logging.Level,
		"redis_enabled":        cfg.Redis.Enabled,
	})

	defer logger.LogServiceStop(serviceName, "shutdown")

	m := metrics.New()
	httpClient := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}

	var (
		prober   health.Prober
		itemRepo repository.SaleItemRepository
	)
	if cfg.BackendConfigured() {
		prober = repository.NewHealthRepository(cfg.Backend.URL, httpClient)
		itemRepo = repository.NewSaleItemRepository(cfg.Backend.URL, httpClient, cfg.Backend.UpstreamTimeout, m)
	} else {
		slog.Warn("STORE_API_URL is not set, every proxy request will fail with a configuration error")
	}

	if itemRepo != nil && cfg.Redis.Enabled {
		itemCache, err := initCacheWithRetry(cfg, 5, 2*time.Second)
		if err != nil {
			slog.Warn("Redis unavailable, serving without item cache", slog.String("error", err.Error()))
		} else {
			defer itemCache.Close()
			itemRepo = repository.NewCachedSaleItemRepository(itemRepo, itemCache, cfg.Redis.TTL, cfg.Redis.ListTTL, m)
		}
	}

	gate := health.NewGate(prober,
		health.WithCacheTTL(cfg.Backend.HealthCacheTTL),
		health.WithDefaultTimeout(cfg.Backend.HealthCheckTimeout),
		health.WithMetrics(m),
		health.WithBackendURL(logger.MaskURL(cfg.Backend.URL)),
	)

	healthService := service.NewHealthService(gate)
	itemService := service.NewSaleItemService(itemRepo, gate)

	handlers := httpTransport.NewHTTPHandlers(healthService, itemService, m)
	httpServer := httpTransport.NewHTTPServer(cfg, handlers, m)

	var grpcServer *grpcTransport.GRPCServer
	if cfg.Server.GRPCEnabled {
		grpcServer = grpcTransport.NewGRPCServer(cfg, healthService)
	}

	var wg sync.WaitGroup

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting HTTP server", slog.String("port", cfg.Server.HTTPPort))

		if err := httpServer.StartServer(); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	if grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slog.Info("Starting gRPC server", slog.String("port", cfg.Server.GRPCPort))

			if err := grpcServer.StartServer(); err != nil {
				slog.Error("gRPC server error", slog.String("error", err.Error()))
			}
		}()
	}

	<-quit
	slog.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Stopping HTTP server...")
	if err := httpServer.Stop(ctx); err != nil {
		slog.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	if grpcServer != nil {
		slog.Info("Stopping gRPC server...")
		if err := grpcServer.Stop(ctx); err != nil {
			slog.Error("Error stopping gRPC server", slog.String("error", err.Error()))
		}
	}

	slog.Info("Waiting for servers to stop...")
	wg.Wait()

	slog.Info("All servers stopped successfully")
}

func initCacheWithRetry(cfg *config.Config, maxRetries int, delay time.Duration) (cache.ItemCache, error) {
	var itemCache cache.ItemCache
	var err error

	for i := 0; i < maxRetries; i++ {
		slog.Info("Attempting to connect to Redis",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries))

		itemCache, err = cache.NewRedisCache(cfg.Redis.URLs, cfg.Redis.Password, cfg.Redis.DB, true)
		if err == nil {
			logger.LogCacheStatus(context.Background(), true, len(cfg.Redis.URLs), cfg.Redis.TTL)
			return itemCache, nil
		}

		slog.Warn("Redis connection failed, retrying...",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", delay))

		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, err
}
