// Package store defines the boundary to the record store that holds
// entries and user profiles. Implementations range from an in-memory
// map for development to SQLite and a hosted spreadsheet.
package store

import (
	"context"
	"errors"

	"evidenca/internal/core"
)

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
)

type (
	// EntryStore is the CRUD surface for daily entries, keyed by
	// (username, date).
	EntryStore interface {
		// ListEntries returns all entries of a user in ascending
		// date order.
		ListEntries(ctx context.Context, username string) ([]core.DailyEntry, error)
		GetEntry(ctx context.Context, username string, date core.Date) (core.DailyEntry, bool, error)
		UpsertEntry(ctx context.Context, username string, e core.DailyEntry) error
		DeleteEntry(ctx context.Context, username string, date core.Date) error
	}

	// ProfileStore manages user accounts.
	ProfileStore interface {
		GetProfile(ctx context.Context, username string) (core.Profile, bool, error)
		ListProfiles(ctx context.Context) ([]core.Profile, error)
		CreateProfile(ctx context.Context, p core.Profile) error
		UpdateHourlyRate(ctx context.Context, username string, rate core.Money) error
	}
)

// SaveEntry is the single write boundary that enforces the derived
// existence rule: an entry with no shifts and no comment is deleted
// instead of stored. Returns true when the write turned into a delete.
func SaveEntry(ctx context.Context, es EntryStore, username string, e core.DailyEntry) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	if e.IsEmpty() {
		return true, es.DeleteEntry(ctx, username, e.Date)
	}
	e.EnsureShiftIDs()
	return false, es.UpsertEntry(ctx, username, e)
}
