package main

import (
	"context"
	"errors"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting fintrack-worker")

	var mirror sheets.TransactionMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.ConfigFromApp(cfg))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		if err := client.EnsureHeader(context.Background()); err != nil {
			logger.Error("Failed to prepare spreadsheet header", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		mirror = mem.New()
		logger.Info("Google Sheets disabled - mirroring events in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	mirrorWorker := worker.NewMirrorWorker(mirror, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	go func() {
		err := amqpClient.ConsumeTransactionEvents(ctx, mirrorWorker.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
