package main

import (
	"context"
	"errors"
	"os"
	"time"

	"evidenca/internal/cli"
	"evidenca/internal/store/sheets"
	"evidenca/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting evidenca-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the sync worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID must be set for the sync worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	remote, err := sheets.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(repo, remote, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on entries whose events were missed while the worker
	// was down.
	if n, err := syncWorker.SweepPending(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("Startup sweep completed", "synced", n)
	}

	if err := syncWorker.Run(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.SyncInterval); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
