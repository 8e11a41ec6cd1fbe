// Package backend selects and wires a record store implementation
// from configuration.
package backend

import (
	"context"

	"evidenca/internal/store"
)

// Store is the full surface the HTTP layer needs.
type Store interface {
	store.EntryStore
	store.ProfileStore
}

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// Result is a constructed backend with its optional cleanup.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
