package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/config"
	"github.com/alex-user-go/feriados/internal/handler"
	"github.com/alex-user-go/feriados/internal/logging"
	"github.com/alex-user-go/feriados/internal/middleware"
	"github.com/alex-user-go/feriados/internal/obs"
	"github.com/alex-user-go/feriados/internal/providers"
	"github.com/alex-user-go/feriados/internal/search"
	"github.com/alex-user-go/feriados/internal/search/cache"
	"github.com/alex-user-go/feriados/internal/search/ratelimit"
	"github.com/alex-user-go/feriados/internal/web"
)

// Run initializes and runs the application.
func Run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics := obs.NewMetrics(logger)

	provider := NewProvider(cfg)
	service := search.NewService(provider, cfg.UpstreamTimeout, metrics, logger)

	resultCache, err := NewCache(cfg, logger)
	if err != nil {
		return err
	}
	defer resultCache.Close()

	limiter := ratelimit.New(cfg.MaxRequestsPerMin, time.Minute)
	defer limiter.Close()

	h := handler.New(service, resultCache, limiter, metrics, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      NewRouter(h, metrics, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("source", provider.Name()),
			zap.String("cache", cfg.CacheBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}

// NewRouter wires the page, the holiday API and the operational endpoints.
func NewRouter(h *handler.Handler, metrics *obs.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))

	r.Get("/", web.IndexHandler(logger))
	h.Register(r)
	r.Get("/healthz", obs.HealthHandler(logger))
	r.Get("/metrics", metrics.MetricsHandler())
	return r
}

// NewProvider returns the holiday source selected by cfg.
func NewProvider(cfg *config.Config) providers.Provider {
	if cfg.HolidaySource == config.SourceLocal {
		return providers.NewLocalProvider(config.SourceLocal)
	}
	return providers.NewHTTPProvider(config.SourceBrasilAPI, cfg.HolidayAPIURL, cfg.UpstreamTimeout)
}

// NewCache returns the result cache selected by cfg. The Redis backend must
// answer a ping at startup.
func NewCache(cfg *config.Config, logger *zap.Logger) (cache.ResultCache, error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return cache.Nop{}, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisCacheDB,
		})
		rc := cache.NewRedisCache(client, cfg.CacheTTL, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return rc, nil
	default:
		return cache.NewCache(cfg.CacheTTL), nil
	}
}
