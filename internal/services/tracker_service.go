// Package services orchestrates writes across the local repository and
// the async sync pipeline to the hosted store.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"evidenca/internal/amqp"
	"evidenca/internal/core"
	"evidenca/internal/storage"
)

// TrackerService performs entry and profile writes. The repository is
// written first and is authoritative; the hosted store is reconciled
// from published events, so a publish failure degrades to a pending
// sync rather than a failed request.
type TrackerService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewTrackerService(repo *storage.Repository, amqpClient *amqp.Client) *TrackerService {
	return &TrackerService{
		storage:    repo,
		amqpClient: amqpClient,
	}
}

// SaveEntry upserts an entry, or deletes it when it is empty (the
// derived existence rule). Returns true when the save became a delete.
func (s *TrackerService) SaveEntry(ctx context.Context, username string, e core.DailyEntry) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	if e.IsEmpty() {
		return true, s.DeleteEntry(ctx, username, e.Date)
	}

	e.EnsureShiftIDs()
	version, err := s.storage.UpsertEntry(ctx, username, e)
	if err != nil {
		return false, fmt.Errorf("save entry: %w", err)
	}

	if err := s.publishSync(ctx, username, e.Date, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync event",
			"username", username, "date", e.Date.String(), "error", err)
		// Entry is saved locally; the worker catches up from the
		// pending flag on its next sweep.
	}
	return false, nil
}

func (s *TrackerService) DeleteEntry(ctx context.Context, username string, date core.Date) error {
	if err := s.storage.DeleteEntry(ctx, username, date); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishEntryDelete(ctx, username, date.String()); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event",
				"username", username, "date", date.String(), "error", err)
		}
	}
	return nil
}

func (s *TrackerService) publishSync(ctx context.Context, username string, date core.Date, version int64) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping sync event")
		return nil
	}
	return s.amqpClient.PublishEntrySync(ctx, username, date.String(), version)
}

func (s *TrackerService) Close() error {
	var firstErr error
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			firstErr = err
		}
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
