package services

import (
	"context"
	"path/filepath"
	"testing"

	"evidenca/internal/core"
	"evidenca/internal/storage"
)

func testService(t *testing.T) *TrackerService {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "evidenca.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	svc := NewTrackerService(repo, nil) // no AMQP in tests, sync stays pending
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestSaveEntryEmptyDeletes(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	date := core.NewDate(2024, 6, 1)

	full := core.DailyEntry{Date: date, Shifts: []core.Shift{core.NewShift("08:00", "16:00")}}
	if deleted, err := svc.SaveEntry(ctx, "mojca", full); err != nil || deleted {
		t.Fatalf("save: deleted=%v err=%v", deleted, err)
	}

	deleted, err := svc.SaveEntry(ctx, "mojca", core.DailyEntry{Date: date, Comment: "   "})
	if err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if !deleted {
		t.Fatal("empty entry must be deleted, not stored")
	}
	if _, ok, _ := svc.storage.GetEntry(ctx, "mojca", date); ok {
		t.Fatal("empty entry was persisted")
	}
}

func TestSaveEntryRejectsMissingDate(t *testing.T) {
	svc := testService(t)
	if _, err := svc.SaveEntry(context.Background(), "mojca", core.DailyEntry{Comment: "x"}); err == nil {
		t.Fatal("entry without a date must be rejected")
	}
}
