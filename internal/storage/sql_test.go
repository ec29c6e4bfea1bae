package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
)

func openSQLite(t *testing.T) *storage.SQLBackend {
	t.Helper()
	b, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "timesheet.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSQLiteEntries(t *testing.T) {
	b := openSQLite(t)
	ctx := context.Background()

	first := entry("e1", "2026-02-27")
	second := entry("e2", "2026-02-28")
	second.CreatedAt = 2
	for _, e := range []model.TimeEntry{first, second} {
		if err := b.UpsertEntry(ctx, e); err != nil {
			t.Fatalf("UpsertEntry: %v", err)
		}
	}
	first.Lunch30Min = true
	first.DurationMins = 210
	if err := b.UpsertEntry(ctx, first); err != nil {
		t.Fatalf("UpsertEntry (update): %v", err)
	}
	if err := b.DeleteEntry(ctx, "e2"); err != nil {
		t.Fatal(err)
	}

	snap, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(snap.Entries))
	}
	got := snap.Entries[0]
	if !got.Lunch30Min || got.DurationMins != 210 || got.CreatedAt != 1 {
		t.Errorf("entry = %+v", got)
	}
}

func TestSQLiteSettings(t *testing.T) {
	b := openSQLite(t)
	ctx := context.Background()

	snap, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Settings.Jobs) != len(model.DefaultJobs) {
		t.Errorf("fresh jobs = %v, want defaults", snap.Settings.Jobs)
	}

	s := model.Settings{
		People: []string{"Ann"},
		Jobs:   []string{},
		ActiveSessions: map[string]model.ActiveSession{
			"Ann": {PersonName: "Ann", JobName: "Maintenance", StartTime: 1000},
		},
	}
	for i := 0; i < 2; i++ {
		if err := b.SaveSettings(ctx, s); err != nil {
			t.Fatalf("SaveSettings #%d: %v", i, err)
		}
	}
	snap, err = b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Settings.People) != 1 || len(snap.Settings.Jobs) != 0 {
		t.Errorf("settings = %+v", snap.Settings)
	}
	if got := snap.Settings.ActiveSessions["Ann"]; got.StartTime != 1000 {
		t.Errorf("session = %+v", got)
	}
}
