// cmd/api-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"culturis/internal/api"
	"culturis/internal/common/config"
	"culturis/internal/common/logger"
	"culturis/internal/common/observability"
	"culturis/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api server...", zap.String("environment", cfg.App.Environment))

	obs := observability.New("api-server", cfg.Tracing, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			zapLog.Error("observability shutdown failed", zap.Error(err))
		}
	}()

	deps, cleanup, err := pipeline.Connect(context.Background(), cfg, log)
	if err != nil {
		zapLog.Fatal("client initialization failed", zap.Error(err))
	}
	defer cleanup()

	stages := pipeline.NewStages(cfg, deps, log)
	p := pipeline.New(stages, pipeline.OptionsFromConfig(cfg.Pipeline), obs, log)

	opts := api.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimit:       cfg.Server.RateLimit,
		DefaultLocation: cfg.Pipeline.DefaultLocation,
	}
	if len(cfg.Pipeline.DefaultCoordinates) == 2 {
		opts.DefaultCoordinates = [2]float64{cfg.Pipeline.DefaultCoordinates[0], cfg.Pipeline.DefaultCoordinates[1]}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(p, opts, log).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP API failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP API shutdown failed", zap.Error(err))
	}
	zapLog.Info("API server stopped gracefully")
}
