// Package memory provides a map-backed store used in development and
// tests. It can seed itself from backup-shaped JSON files in a data
// directory, one file per user.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"evidenca/internal/core"
	"evidenca/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	profiles map[string]core.Profile
	entries  map[string]map[string]core.DailyEntry // username -> date -> entry
}

var (
	_ store.EntryStore   = (*Store)(nil)
	_ store.ProfileStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		profiles: make(map[string]core.Profile),
		entries:  make(map[string]map[string]core.DailyEntry),
	}
}

// NewFromFiles builds a store seeded from <dir>/*.json backup files.
// A missing or unreadable directory yields an empty store; individual
// bad files are skipped with a warning.
func NewFromFiles(dir string) *Store {
	s := New()
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		return s
	}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("Skipping unreadable seed file", "file", file, "error", err)
			continue
		}
		var b core.Backup
		if err := json.Unmarshal(raw, &b); err != nil || b.Validate() != nil {
			slog.Warn("Skipping malformed seed file", "file", file)
			continue
		}
		p := core.Profile{Username: b.Username, HourlyRate: core.RateFromFloat(b.HourlyRate)}
		_ = s.CreateProfile(context.Background(), p)
		for _, e := range b.Entries {
			if e.IsEmpty() {
				continue
			}
			_ = s.UpsertEntry(context.Background(), b.Username, e)
		}
		slog.Info("Seeded user from file", "file", file, "username", b.Username, "entries", len(b.Entries))
	}
	return s
}

func (s *Store) ListEntries(ctx context.Context, username string) ([]core.DailyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := s.entries[username]
	out := make([]core.DailyEntry, 0, len(byDate))
	for _, e := range byDate {
		out = append(out, e)
	}
	// FilterMonth sorts; here a plain ascending sort over everything.
	sortByDate(out)
	return out, nil
}

func (s *Store) GetEntry(ctx context.Context, username string, date core.Date) (core.DailyEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[username][date.String()]
	return e, ok, nil
}

func (s *Store) UpsertEntry(ctx context.Context, username string, e core.DailyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[username] == nil {
		s.entries[username] = make(map[string]core.DailyEntry)
	}
	s.entries[username][e.Date.String()] = e
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, username string, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries[username], date.String())
	return nil
}

func (s *Store) GetProfile(ctx context.Context, username string) (core.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[username]
	return p, ok, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) CreateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(p.Username)
	if _, exists := s.profiles[key]; exists {
		return store.ErrProfileExists
	}
	p.Username = key
	s.profiles[key] = p
	return nil
}

func (s *Store) UpdateHourlyRate(ctx context.Context, username string, rate core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[username]
	if !ok {
		return store.ErrProfileNotFound
	}
	p.HourlyRate = rate
	s.profiles[username] = p
	return nil
}

func sortByDate(entries []core.DailyEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date.Time)
	})
}
