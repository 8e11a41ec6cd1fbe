package store

import (
	"context"
	"errors"

	"evidenca/internal/core"
	"evidenca/internal/services"
	"evidenca/internal/storage"
)

// LocalStore binds the SQLite repository and the tracker service into
// the store interfaces, so handlers stay backend-agnostic. Reads hit
// the repository directly; writes go through the service, which
// enforces the empty-entry rule and feeds the sync pipeline.
type LocalStore struct {
	repo *storage.Repository
	svc  *services.TrackerService
}

var (
	_ EntryStore   = (*LocalStore)(nil)
	_ ProfileStore = (*LocalStore)(nil)
)

func NewLocalStore(repo *storage.Repository, svc *services.TrackerService) *LocalStore {
	return &LocalStore{repo: repo, svc: svc}
}

func (s *LocalStore) ListEntries(ctx context.Context, username string) ([]core.DailyEntry, error) {
	return s.repo.ListEntries(ctx, username)
}

func (s *LocalStore) GetEntry(ctx context.Context, username string, date core.Date) (core.DailyEntry, bool, error) {
	return s.repo.GetEntry(ctx, username, date)
}

func (s *LocalStore) UpsertEntry(ctx context.Context, username string, e core.DailyEntry) error {
	_, err := s.svc.SaveEntry(ctx, username, e)
	return err
}

func (s *LocalStore) DeleteEntry(ctx context.Context, username string, date core.Date) error {
	return s.svc.DeleteEntry(ctx, username, date)
}

func (s *LocalStore) GetProfile(ctx context.Context, username string) (core.Profile, bool, error) {
	return s.repo.GetProfile(ctx, username)
}

func (s *LocalStore) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

func (s *LocalStore) CreateProfile(ctx context.Context, p core.Profile) error {
	err := s.repo.CreateProfile(ctx, p)
	if errors.Is(err, storage.ErrDuplicateProfile) {
		return ErrProfileExists
	}
	return err
}

func (s *LocalStore) UpdateHourlyRate(ctx context.Context, username string, rate core.Money) error {
	err := s.repo.UpdateHourlyRate(ctx, username, rate)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}
