// Package worker holds the two background processes: the sync worker that
// replicates local writes to the remote store, and the reminder worker that
// mails a digest of upcoming obligations.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"grana/internal/amqp"
	"grana/internal/core"
	"grana/internal/storage"
)

// SyncWorker replays local SQLite writes into the remote Postgres store.
// Messages carry only entity and id; the worker always reads the current
// local row, so a burst of updates collapses into one remote write.
type SyncWorker struct {
	local     *storage.SQLiteRepository
	remote    *storage.PostgresRepository
	batchSize int
}

func NewSyncWorker(local *storage.SQLiteRepository, remote *storage.PostgresRepository, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		local:     local,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleMessage processes one sync notification from AMQP.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"entity", msg.Entity,
		"id", msg.ID,
		"deleted", msg.Deleted)

	if msg.Deleted {
		if err := w.remote.DeleteRemote(ctx, msg.Entity, msg.ID); err != nil {
			return fmt.Errorf("delete remote: %w", err)
		}
		return nil
	}

	return w.syncRow(ctx, msg.Entity, msg.ID)
}

// ProcessPending pushes every locally dirty row. It backs up the AMQP path
// in case messages were lost while the broker or the worker was down.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.local.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending rows: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending sync rows", "count", len(pending))

	var failed int
	for _, row := range pending {
		if err := w.syncRow(ctx, row.Entity, row.ID); err != nil {
			failed++
			slog.ErrorContext(ctx, "Failed to sync pending row",
				"entity", row.Entity,
				"id", row.ID,
				"error", err)
			if merr := w.local.MarkSyncError(ctx, row.Entity, row.ID, err.Error()); merr != nil {
				slog.ErrorContext(ctx, "Failed to record sync error", "error", merr)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pending rows failed", failed, len(pending))
	}
	return nil
}

// syncRow reads the current local row and upserts it remotely. The version
// is captured before the read so a concurrent local write keeps the row
// dirty for the next pass. Rows deleted locally mid-flight are skipped; the
// delete message handles the remote side.
func (w *SyncWorker) syncRow(ctx context.Context, entity string, id int64) error {
	version, err := w.local.RowVersion(ctx, entity, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Local row gone before sync, skipping",
			"entity", entity, "id", id)
		return nil
	}
	if err != nil {
		return err
	}

	switch entity {
	case storage.EntityTransaction:
		t, err := w.local.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := w.remote.UpsertTransaction(ctx, t); err != nil {
			return err
		}
	case storage.EntityDebt:
		d, err := w.local.GetDebt(ctx, id)
		if err != nil {
			return err
		}
		if err := w.remote.UpsertDebt(ctx, d); err != nil {
			return err
		}
	case storage.EntityFixedExpense:
		f, err := w.findFixedExpense(ctx, id)
		if err != nil {
			return err
		}
		if err := w.remote.UpsertFixedExpense(ctx, f); err != nil {
			return err
		}
	case storage.EntityFixedIncome:
		f, err := w.findFixedIncome(ctx, id)
		if err != nil {
			return err
		}
		if err := w.remote.UpsertFixedIncome(ctx, f); err != nil {
			return err
		}
	case storage.EntityInvestment:
		inv, err := w.findInvestment(ctx, id)
		if err != nil {
			return err
		}
		if err := w.remote.UpsertInvestment(ctx, inv); err != nil {
			return err
		}
	case storage.EntityConfig:
		cfg, err := w.local.GetConfig(ctx)
		if err != nil {
			return err
		}
		if err := w.remote.SaveConfig(ctx, cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown sync entity %q", entity)
	}

	return w.local.MarkSynced(ctx, entity, id, version)
}

func (w *SyncWorker) findFixedExpense(ctx context.Context, id int64) (core.FixedExpense, error) {
	templates, err := w.local.ListFixedExpenses(ctx)
	if err != nil {
		return core.FixedExpense{}, err
	}
	for _, f := range templates {
		if f.ID == id {
			return f, nil
		}
	}
	return core.FixedExpense{}, fmt.Errorf("fixed expense %d: %w", id, core.ErrNotFound)
}

func (w *SyncWorker) findFixedIncome(ctx context.Context, id int64) (core.FixedIncome, error) {
	templates, err := w.local.ListFixedIncomes(ctx)
	if err != nil {
		return core.FixedIncome{}, err
	}
	for _, f := range templates {
		if f.ID == id {
			return f, nil
		}
	}
	return core.FixedIncome{}, fmt.Errorf("fixed income %d: %w", id, core.ErrNotFound)
}

func (w *SyncWorker) findInvestment(ctx context.Context, id int64) (core.Investment, error) {
	investments, err := w.local.ListInvestments(ctx)
	if err != nil {
		return core.Investment{}, err
	}
	for _, inv := range investments {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Investment{}, fmt.Errorf("investment %d: %w", id, core.ErrNotFound)
}
