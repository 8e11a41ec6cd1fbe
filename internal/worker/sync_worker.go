// Package worker reconciles the hosted store with the local
// repository: it consumes entry events and periodically sweeps
// pending rows that events missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"evidenca/internal/amqp"
	"evidenca/internal/core"
	"evidenca/internal/storage"
	"evidenca/internal/store"
)

type SyncWorker struct {
	storage   *storage.Repository
	remote    store.EntryStore
	batchSize int
}

func NewSyncWorker(repo *storage.Repository, remote store.EntryStore, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{storage: repo, remote: remote, batchSize: batchSize}
}

// HandleEvent processes one entry event from the queue.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.EntryEvent) error {
	date, err := core.ParseDate(event.Date)
	if err != nil {
		return fmt.Errorf("event date %q: %w", event.Date, err)
	}

	switch event.Kind {
	case amqp.KindDelete:
		if err := w.remote.DeleteEntry(ctx, event.Username, date); err != nil {
			return fmt.Errorf("delete remote entry: %w", err)
		}
		slog.InfoContext(ctx, "Deleted entry from hosted store",
			"username", event.Username, "date", event.Date)
		return nil
	case amqp.KindSync:
		return w.syncEntry(ctx, event.Username, date, event.Version)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

// syncEntry pushes the current local state of (username, date) to the
// hosted store. The repository is read fresh, so stale events still
// deliver the latest content; an entry deleted in the meantime turns
// the sync into a remote delete.
func (w *SyncWorker) syncEntry(ctx context.Context, username string, date core.Date, version int64) error {
	entry, ok, err := w.storage.GetEntry(ctx, username, date)
	if err != nil {
		return fmt.Errorf("read local entry: %w", err)
	}
	if !ok {
		if err := w.remote.DeleteEntry(ctx, username, date); err != nil {
			return fmt.Errorf("delete remote entry: %w", err)
		}
		return nil
	}

	if err := w.remote.UpsertEntry(ctx, username, entry); err != nil {
		return fmt.Errorf("upsert remote entry: %w", err)
	}
	if err := w.storage.MarkSynced(ctx, username, date, version); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Synced entry to hosted store",
		"username", username, "date", date.String(), "version", version)
	return nil
}

// SweepPending syncs entries whose events were lost (publish failure,
// worker downtime). Returns the number of entries synced.
func (w *SyncWorker) SweepPending(ctx context.Context) (int, error) {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}

	synced := 0
	for _, p := range pending {
		if err := w.syncEntry(ctx, p.Username, p.Date, p.Version); err != nil {
			slog.ErrorContext(ctx, "Pending sweep failed for entry",
				"username", p.Username, "date", p.Date.String(), "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Run consumes events and sweeps pending entries until the context is
// cancelled.
func (w *SyncWorker) Run(ctx context.Context, amqpURL, exchange, queue string, sweepInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqp.ConsumeLoop(ctx, amqpURL, exchange, queue, w.HandleEvent)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				n, err := w.SweepPending(ctx)
				if err != nil {
					slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
					continue
				}
				if n > 0 {
					slog.InfoContext(ctx, "Pending sweep completed", "synced", n)
				}
			}
		}
	})

	return g.Wait()
}
