package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"findash/internal/backend"
	"findash/internal/cli"
	"findash/internal/config"
	apphttp "findash/internal/http"
	"findash/internal/log"
	"findash/internal/query"
	"findash/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	engine := query.NewEngine(res.Store,
		query.WithLogger(logger),
		query.WithBudgets(budgetsFrom(cfg)),
	)
	txService := services.NewTransactionService(res.Store, res.Publisher, logger)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:      ":" + cfg.Port,
		Queries:   engine,
		Mutations: txService,
		Pinger:    res.Pinger,
		Logger:    logger,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting findash server", log.FieldOperation, log.OpStartup, "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// budgetsFrom keeps the default category allowances and takes the overall
// monthly budget from MONTHLY_BUDGET.
func budgetsFrom(cfg *config.Config) query.Budgets {
	b := query.DefaultBudgets()
	if v := cfg.Budget(); v.IsPositive() {
		b.Monthly = v
	}
	return b
}
