// Package worker keeps the spreadsheet mirror in step with the ledgers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// Source is the read side of the store the worker needs.
type Source interface {
	ListUsers(ctx context.Context) ([]string, error)
	Load(ctx context.Context, username string) (core.Ledger, error)
}

// Consumer delivers ledger change events.
type Consumer interface {
	ConsumeLedgerChanged(ctx context.Context, handler amqp.Handler) error
}

// ExportWorker rewrites a user's mirrored report whenever their ledger
// changes.
type ExportWorker struct {
	source      Source
	writer      sheets.ReportWriter
	logger      *log.Logger
	concurrency int
}

func NewExportWorker(source Source, writer sheets.ReportWriter, logger *log.Logger, concurrency int) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExportWorker{
		source:      source,
		writer:      writer,
		logger:      logger.WithComponent(log.ComponentWorker),
		concurrency: concurrency,
	}
}

// HandleLedgerChanged is the amqp.Handler for change events.
func (w *ExportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldUsername, msg.Username,
		"reason", msg.Reason,
		"timestamp", msg.Timestamp)
	return w.Export(ctx, msg.Username)
}

// Export mirrors the current ledger of username.
func (w *ExportWorker) Export(ctx context.Context, username string) error {
	l, err := w.source.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("load ledger %s: %w", username, err)
	}

	rows := export.Table(l)
	if err := w.writer.WriteReport(ctx, username, rows); err != nil {
		return fmt.Errorf("write report %s: %w", username, err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		log.FieldUsername, username,
		log.FieldRows, len(rows)-1,
		log.FieldOperation, log.OpExport)
	return nil
}

// ExportAll mirrors every user with at most concurrency writes in flight. A
// failing user does not stop the others; all failures are returned joined.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	users, err := w.source.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, username := range users {
		g.Go(func() error {
			if err := w.Export(gctx, username); err != nil {
				w.logger.ErrorContext(gctx, "Report export failed",
					log.FieldUsername, username,
					log.FieldError, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	w.logger.InfoContext(ctx, "Full export finished",
		"users", len(users),
		"failed", len(errs))
	return errors.Join(errs...)
}

// Run exports every user once, then follows change events until ctx ends.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.ExportAll(ctx); err != nil {
		w.logger.WarnContext(ctx, "Initial export incomplete", log.FieldError, err)
	}
	if ctx.Err() != nil {
		return nil
	}
	err := consumer.ConsumeLedgerChanged(ctx, w.HandleLedgerChanged)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
