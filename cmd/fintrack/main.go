package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/middleware/security"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateAuth)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	result := cli.InitBackend(context.Background(), logger, cfg)

	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		logger.Error("Invalid trusted proxy list", "error", err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, result.Backend, apphttp.Options{
		Verifier:           auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Detector:           detector,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events_enabled", result.EventsEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
