package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/amqp"
	"hearth/internal/budget"
	applog "hearth/internal/log"
)

// SyncWorker drives bank syncs in the background: it handles on-demand
// requests arriving over AMQP and runs a scheduled sync on an interval as
// a backup in case messages are lost.
type SyncWorker struct {
	syncer *budget.Syncer
}

func NewSyncWorker(syncer *budget.Syncer) *SyncWorker {
	return &SyncWorker{syncer: syncer}
}

// HandleSyncRequest processes a single sync request message from AMQP.
func (w *SyncWorker) HandleSyncRequest(ctx context.Context, msg *amqp.SyncRequestMessage) error {
	result, err := w.syncer.Sync(ctx)
	if err != nil {
		if errors.Is(err, budget.ErrNotLinked) {
			// Nothing to do until a bank link is set up; dropping the
			// message is correct, requeueing would spin forever.
			slog.WarnContext(ctx, "Sync requested but no bank link configured")
			return nil
		}
		return fmt.Errorf("sync: %w", err)
	}

	slog.InfoContext(ctx, "Sync request completed",
		"reason", msg.Reason,
		"accounts", result.Accounts,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return nil
}

// RunScheduled syncs once at startup and then on every tick of the
// interval, until the context is cancelled. Sync failures are logged and
// retried on the next tick.
func (w *SyncWorker) RunScheduled(ctx context.Context, interval time.Duration) error {
	w.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	result, err := w.syncer.Sync(ctx)
	if err != nil {
		if errors.Is(err, budget.ErrNotLinked) {
			slog.InfoContext(ctx, "Skipping scheduled sync - no bank link configured")
			return
		}
		fields := applog.NewFields().
			WithComponent(applog.ComponentWorker).
			WithOperation(applog.OpSync).
			WithError(err)
		slog.ErrorContext(ctx, "Scheduled sync failed", fields.ToSlice()...)
		return
	}
	slog.InfoContext(ctx, "Scheduled sync completed",
		"accounts", result.Accounts,
		"imported", result.Imported,
		"skipped", result.Skipped)
}
