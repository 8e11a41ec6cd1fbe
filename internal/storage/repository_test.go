package storage

import (
	"context"
	"path/filepath"
	"testing"

	"evidenca/internal/core"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "evidenca.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	p := core.Profile{
		Username:     "aleks",
		PasswordHash: "$2a$10$fakehash",
		HourlyRate:   core.Money{Cents: 900},
		Admin:        true,
	}
	if err := repo.CreateProfile(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateProfile(ctx, p); err != ErrDuplicateProfile {
		t.Fatalf("duplicate create: got %v", err)
	}

	got, ok, err := repo.GetProfile(ctx, "aleks")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != p {
		t.Fatalf("round trip changed profile: %+v vs %+v", got, p)
	}

	if _, ok, _ := repo.GetProfile(ctx, "neznan"); ok {
		t.Fatal("unknown profile reported as present")
	}

	if err := repo.UpdateHourlyRate(ctx, "aleks", core.Money{Cents: 1250}); err != nil {
		t.Fatalf("update rate: %v", err)
	}
	got, _, _ = repo.GetProfile(ctx, "aleks")
	if got.HourlyRate.Cents != 1250 {
		t.Fatalf("rate = %d, want 1250", got.HourlyRate.Cents)
	}
	if err := repo.UpdateHourlyRate(ctx, "neznan", core.Money{Cents: 1}); err != ErrNotFound {
		t.Fatalf("unknown user rate update: got %v", err)
	}
}

func TestEntryUpsertVersioning(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	e := core.DailyEntry{
		Date:    core.NewDate(2024, 6, 1),
		Shifts:  []core.Shift{core.NewShift("08:00", "16:00")},
		Comment: "prva",
	}
	v1, err := repo.UpsertEntry(ctx, "mojca", e)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if v1 != 1 {
		t.Fatalf("first version = %d, want 1", v1)
	}

	e.Comment = "druga"
	v2, err := repo.UpsertEntry(ctx, "mojca", e)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if v2 != 2 {
		t.Fatalf("second version = %d, want 2", v2)
	}

	got, ok, err := repo.GetEntry(ctx, "mojca", e.Date)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Comment != "druga" || len(got.Shifts) != 1 || got.Shifts[0].Start != "08:00" {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestListEntriesOrdered(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	for _, day := range []int{20, 3, 11} {
		e := core.DailyEntry{Date: core.NewDate(2024, 6, day), Comment: "x"}
		if _, err := repo.UpsertEntry(ctx, "mojca", e); err != nil {
			t.Fatalf("upsert day %d: %v", day, err)
		}
	}
	entries, err := repo.ListEntries(ctx, "mojca")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].Date.Before(entries[i].Date.Time) {
			t.Fatal("entries not ascending by date")
		}
	}
	// Entries are per-user.
	other, _ := repo.ListEntries(ctx, "aleks")
	if len(other) != 0 {
		t.Fatalf("foreign user sees %d entries", len(other))
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	e := core.DailyEntry{Date: core.NewDate(2024, 6, 1), Comment: "x"}
	v, err := repo.UpsertEntry(ctx, "mojca", e)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Username != "mojca" || pending[0].Version != v {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	if err := repo.MarkSynced(ctx, "mojca", e.Date, v); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ = repo.ListPendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("still pending after sync: %+v", pending)
	}

	// A new write re-arms the pending flag; a stale MarkSynced is a no-op.
	v2, _ := repo.UpsertEntry(ctx, "mojca", e)
	if err := repo.MarkSynced(ctx, "mojca", e.Date, v); err != nil {
		t.Fatalf("stale mark synced: %v", err)
	}
	pending, _ = repo.ListPendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].Version != v2 {
		t.Fatalf("stale sync must not clear newer version: %+v", pending)
	}

	if err := repo.DeleteEntry(ctx, "mojca", e.Date); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.GetEntry(ctx, "mojca", e.Date); ok {
		t.Fatal("entry still present after delete")
	}
}
