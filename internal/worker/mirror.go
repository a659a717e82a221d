// Package worker mirrors transaction events into an external spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/export/sheets"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// Mirror appends created transactions to a spreadsheet as events arrive.
// The mirror is append-only: update and delete events are logged and
// skipped.
type Mirror struct {
	store    storage.Store
	appender sheets.TransactionAppender
	logger   *slog.Logger
}

func NewMirror(store storage.Store, appender sheets.TransactionAppender) *Mirror {
	return &Mirror{
		store:    store,
		appender: appender,
		logger:   applog.ForComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes one transaction event. Returning an error requeues
// the delivery.
func (m *Mirror) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if event.Action != "created" {
		m.logger.InfoContext(ctx, "Skipping non-created event",
			applog.FieldUsername, event.Username,
			applog.FieldTxID, event.ID,
			applog.FieldAction, event.Action)
		return nil
	}

	snap, err := m.store.Load(ctx, event.Username)
	if err != nil {
		return fmt.Errorf("load ledger for %s: %w", event.Username, err)
	}

	for _, tx := range snap.Transactions {
		if tx.ID == event.ID {
			if err := m.appender.AppendTransaction(ctx, event.Username, tx); err != nil {
				return fmt.Errorf("append transaction %d: %w", event.ID, err)
			}
			return nil
		}
	}

	// The transaction may have been deleted between the event and now;
	// nothing to mirror.
	m.logger.WarnContext(ctx, "Transaction from event not found in store",
		applog.FieldUsername, event.Username,
		applog.FieldTxID, event.ID)
	return nil
}
