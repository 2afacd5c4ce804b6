package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "mediaarchive/internal/api/http"
	"mediaarchive/internal/app"
	"mediaarchive/internal/metrics"
	"mediaarchive/internal/telemetry"
)

const serviceName = "mediaarchive"

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := app.LoadEnvFile(envFile); err != nil {
		slog.Error("env file load failed", slog.String("path", envFile), slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.AddonVersion,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
	})
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", serviceName),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("storage", cfg.StorageBackend),
		slog.String("mongoDb", cfg.MongoDatabase),
		slog.Int("dbIndex", cfg.DBIndex),
		slog.String("baseUrl", cfg.BaseURL),
		slog.Bool("redis", cfg.RedisAddr != ""),
		slog.Bool("tracing", cfg.OTLPEndpoint != ""),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	options := []apihttp.ServerOption{
		apihttp.WithLogger(logger),
		apihttp.WithListSources(rt.Sources),
		apihttp.WithHealthCheck(rt.Health),
		apihttp.WithAddon(apihttp.Addon{Name: cfg.AddonName, Version: cfg.AddonVersion, BaseURL: cfg.BaseURL}),
		apihttp.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	}
	if rt.Ingest != nil {
		options = append(options, apihttp.WithIngest(rt.Ingest))
	}
	handler := apihttp.NewServer(rt.Repo, options...)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			_ = rt.Close(context.Background())
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := rt.Close(shutdownCtx); err != nil {
		logger.Warn("backend close error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
