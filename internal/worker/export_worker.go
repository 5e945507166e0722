// Package worker mirrors the ledger into the spreadsheet export. Events are
// applied one by one as they arrive; a scheduled reconciliation rewrites the
// whole export from a snapshot so lost or reordered events heal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"findash/internal/amqp"
	"findash/internal/ledger"
	"findash/internal/log"
	"findash/internal/sheets"
)

type ExportWorker struct {
	source   ledger.Reader
	exporter sheets.Exporter
	schedule string
	logger   *log.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewExportWorker validates the cron schedule up front so a bad
// EXPORT_SCHEDULE fails at startup.
func NewExportWorker(source ledger.Reader, exporter sheets.Exporter, schedule string, logger *log.Logger) (*ExportWorker, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		schedule: schedule,
		logger:   logger.WithComponent(log.ComponentWorker),
	}, nil
}

// HandleEvent exports the transaction carried by ev. It is an amqp.Handler.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	ref, err := w.exporter.Upsert(ctx, ev.Transaction)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", ev.Transaction.ID, err)
	}
	w.logger.InfoContext(ctx, "Applied transaction event",
		log.FieldTransactionID, ev.Transaction.ID,
		"kind", ev.Kind,
		log.FieldSheetsRef, ref)
	return nil
}

// Reconcile rewrites the export from the current ledger snapshot.
func (w *ExportWorker) Reconcile(ctx context.Context) error {
	txs, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read ledger snapshot: %w", err)
	}
	if err := w.exporter.ReplaceAll(ctx, txs); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}
	w.logger.InfoContext(ctx, "Reconciled export", log.FieldOperation, log.OpExport, log.FieldCount, len(txs))
	return nil
}

// Start runs one reconciliation immediately and then on the schedule.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("export worker is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() {
		if err := w.Reconcile(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled reconciliation failed", log.FieldError, err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}
	if err := w.Reconcile(ctx); err != nil {
		w.logger.WarnContext(ctx, "Initial reconciliation failed", log.FieldError, err)
	}
	c.Start()
	w.cron, w.running = c, true
	w.logger.InfoContext(ctx, "Export worker started", "schedule", w.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running reconciliation to finish
// or ctx to expire.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	done := w.cron.Stop()
	w.running = false
	w.mu.Unlock()

	select {
	case <-done.Done():
		w.logger.InfoContext(ctx, "Export worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
