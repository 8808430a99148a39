package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/logging"
)

var errProviderUnavailable = errors.New("provider unavailable")

type settings struct {
	Port     string
	Mode     string
	LogLevel string
}

func loadSettings() settings {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "9001")
	v.SetDefault("MOCK_MODE", modeOK)
	v.SetDefault("LOG_LEVEL", "info")

	return settings{
		Port:     v.GetString("PORT"),
		Mode:     v.GetString("MOCK_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

func main() {
	cfg := loadSettings()
	port, mode := cfg.Port, cfg.Mode

	logger, err := logging.New(false, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	mock, err := NewMock(mode, logger)
	if err != nil {
		logger.Fatal("invalid mock configuration", zap.Error(err))
	}
	logger.Info("starting provider", zap.String("mode", mode), zap.String("port", port))

	// Setup routes
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Method(http.MethodGet, "/api/feriados/v1/{year}", mock)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write healthz response", zap.Error(err))
		}
	})

	// Configure server
	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
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
		os.Exit(1)
	}

	logger.Info("server stopped")
}
