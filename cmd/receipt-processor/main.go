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
	"fintrack/internal/middleware/security"
	"fintrack/internal/receipt"
	"fintrack/internal/receipt/ocr"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateReceipt)
	logger := cli.SetupLogger(cfg, log.ComponentReceipt)

	var (
		engine  receipt.OCR
		closers []func() error
	)
	switch cfg.OCRProvider {
	case "gemini":
		g, err := ocr.NewGeminiEngine(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini OCR", "error", err)
			os.Exit(1)
		}
		engine = g
		closers = append(closers, g.Close)
	default:
		engine = ocr.NewHTTPEngine(cfg.OCRURL, cfg.OCRTimeout)
	}

	// A nil analyzer leaves only the keyword rules.
	var analyzer receipt.Analyzer
	llm, err := receipt.NewOpenRouterAnalyzer(receipt.OpenRouterConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.OpenRouterModel,
		Referer: cfg.OpenRouterReferer,
		Timeout: cfg.AITimeout,
	})
	switch {
	case err == nil:
		analyzer = llm
	case errors.Is(err, receipt.ErrNotConfigured):
		logger.Warn("OPENROUTER_API_KEY not set - using rule-based analysis only")
	default:
		logger.Error("Failed to initialize OpenRouter analyzer", "error", err)
		os.Exit(1)
	}

	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		logger.Error("Invalid trusted proxy list", "error", err)
		os.Exit(1)
	}

	classifier := receipt.NewClassifier(engine, analyzer, cfg.OCRConcurrency)
	srv, err := apphttp.NewReceiptServer(":"+cfg.ReceiptPort, classifier, apphttp.ReceiptOptions{
		MaxUploadBytes: cfg.MaxUploadBytes,
		Detector:       detector,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("Failed to create receipt server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		for _, c := range closers {
			_ = c()
		}
	})

	logger.Info("Starting receipt processing server",
		"port", cfg.ReceiptPort,
		"ocr_provider", cfg.OCRProvider,
		"analyzer", analyzer != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.ReceiptPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
