package main

import (
	"context"
	"errors"
	"os"

	"findash/internal/amqp"
	"findash/internal/backend"
	"findash/internal/cli"
	"findash/internal/config"
	"findash/internal/log"
	"findash/internal/sheets"
	"findash/internal/sheets/google"
	"findash/internal/sheets/memory"
	"findash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)
	logger = cli.SetupLogger(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker consumes events; it never publishes them.
	backendCfg.AMQPURL = ""

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	exporter, err := newExporter(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize sheets exporter", log.FieldError, err)
		os.Exit(1)
	}

	w, err := worker.NewExportWorker(res.Store, exporter, cfg.ExportSchedule, logger)
	if err != nil {
		logger.Error("Failed to create export worker", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.Error("Export worker stop error", log.FieldError, err)
		}
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start export worker", log.FieldError, err)
		os.Exit(1)
	}

	go func() {
		if err := client.Consume(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumer stopped", log.FieldError, err)
		}
	}()

	logger.Info("Starting findash worker", log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend,
		"queue", cfg.AMQPQueue,
		"schedule", cfg.ExportSchedule)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}

func newExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to memory only")
		return memory.New(), nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Initialized Google Sheets exporter", "sheet", cfg.GoogleSheetName)
	return client, nil
}
