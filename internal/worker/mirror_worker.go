// Package worker consumes the record change feed and projects changes into
// the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dairyledger/internal/amqp"
	"dairyledger/internal/core"
	"dairyledger/internal/store"
)

// Appender is the slice of the mirror client the worker needs.
type Appender interface {
	Append(ctx context.Context, kind core.Kind, r core.Record) error
}

// MirrorWorker resolves change notifications against the stores and appends
// the affected record to the spreadsheet mirror.
type MirrorWorker struct {
	expenses store.Store
	income   store.Store
	mirror   Appender
}

func NewMirrorWorker(expenses, income store.Store, mirror Appender) *MirrorWorker {
	return &MirrorWorker{expenses: expenses, income: income, mirror: mirror}
}

func (w *MirrorWorker) storeFor(kind core.Kind) (store.Store, error) {
	switch kind {
	case core.KindExpense:
		return w.expenses, nil
	case core.KindIncome:
		return w.income, nil
	default:
		return nil, fmt.Errorf("unknown ledger kind %q", kind)
	}
}

// HandleChange processes one change notification. Deletes are logged and
// skipped: the mirror is append-only, so removed records simply stop
// receiving rows. Returning an error requeues the message.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "Processing record change",
		"kind", msg.Kind,
		"record_id", msg.ID,
		"op", msg.Op)

	if msg.Op == amqp.OpDeleted {
		slog.InfoContext(ctx, "Skipping delete, mirror is append-only",
			"kind", msg.Kind,
			"record_id", msg.ID)
		return nil
	}

	st, err := w.storeFor(msg.Kind)
	if err != nil {
		// Unroutable kind will never succeed; drop it rather than requeue.
		slog.ErrorContext(ctx, "Dropping change with unknown kind",
			"kind", msg.Kind,
			"record_id", msg.ID)
		return nil
	}

	record, err := st.GetByID(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Record was deleted between publish and consume.
			slog.WarnContext(ctx, "Record gone before mirroring, skipping",
				"kind", msg.Kind,
				"record_id", msg.ID)
			return nil
		}
		return fmt.Errorf("load record %s: %w", msg.ID, err)
	}

	if err := w.mirror.Append(ctx, msg.Kind, record); err != nil {
		return fmt.Errorf("mirror record %s: %w", msg.ID, err)
	}

	return nil
}
