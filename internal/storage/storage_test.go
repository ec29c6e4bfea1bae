package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
)

func entry(id, date string) model.TimeEntry {
	return model.TimeEntry{
		ID:           id,
		PersonName:   "Ann",
		JobName:      "Maintenance",
		Date:         date,
		ClockIn:      "08:00",
		ClockOut:     "12:00",
		CreatedAt:    1,
		DurationMins: 240,
	}
}

func TestFileLoadEmpty(t *testing.T) {
	b := storage.NewFileBackend(filepath.Join(t.TempDir(), "missing"))
	snap, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on missing dir: %v", err)
	}
	if len(snap.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(snap.Entries))
	}
	if len(snap.Settings.Jobs) != len(model.DefaultJobs) {
		t.Errorf("jobs = %v, want defaults", snap.Settings.Jobs)
	}
}

func TestFileUpsertWritesDayFile(t *testing.T) {
	base := t.TempDir()
	b := storage.NewFileBackend(base)
	ctx := context.Background()

	if err := b.UpsertEntry(ctx, entry("e1", "2026-02-27")); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	e := entry("e1", "2026-02-27")
	e.Notes = "updated"
	if err := b.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("UpsertEntry (update): %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "2026", "02", "27.json"))
	if err != nil {
		t.Fatalf("day file not written: %v", err)
	}
	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		t.Fatal(err)
	}
	if len(df.Entries) != 1 || df.Entries[0].Notes != "updated" {
		t.Errorf("day file = %+v", df)
	}
}

func TestFileUpsertMovesDate(t *testing.T) {
	base := t.TempDir()
	b := storage.NewFileBackend(base)
	ctx := context.Background()

	if err := b.UpsertEntry(ctx, entry("e1", "2026-02-27")); err != nil {
		t.Fatal(err)
	}
	if err := b.UpsertEntry(ctx, entry("e1", "2026-03-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(base, "2026", "02", "27.json")); !os.IsNotExist(err) {
		t.Error("old day file still present after the entry moved")
	}
	snap, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Date != "2026-03-01" {
		t.Errorf("entries = %+v", snap.Entries)
	}
}

func TestFileUpsertRejectsMalformedDate(t *testing.T) {
	b := storage.NewFileBackend(t.TempDir())
	if err := b.UpsertEntry(context.Background(), entry("e1", "27/02/2026")); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestFileDelete(t *testing.T) {
	b := storage.NewFileBackend(t.TempDir())
	ctx := context.Background()
	for _, e := range []model.TimeEntry{entry("a", "2026-02-27"), entry("b", "2026-02-27")} {
		if err := b.UpsertEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.DeleteEntry(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteEntry(ctx, "ghost"); err != nil {
		t.Errorf("DeleteEntry(ghost) = %v, want nil", err)
	}
	snap, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].ID != "b" {
		t.Errorf("entries = %+v", snap.Entries)
	}
}

func TestFileCorruptDayFileBackedUp(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "2026", "02", "27.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	b := storage.NewFileBackend(base)
	if _, err := b.Load(context.Background()); err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err := os.Stat(path + ".corrupt"); os.IsNotExist(err) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
	if _, err := b.Load(context.Background()); err != nil {
		t.Errorf("Load after backup: %v", err)
	}
}

func TestFileSaveSettingsMerges(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "settings.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark","people":["Old"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	b := storage.NewFileBackend(base)
	s := model.DefaultSettings()
	s.People = []string{"Ann"}
	s.UpdatedAt = 42
	if err := b.SaveSettings(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["theme"] != "dark" {
		t.Errorf("unknown field not preserved: %v", doc)
	}

	snap, err := b.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Settings.People) != 1 || snap.Settings.People[0] != "Ann" || snap.Settings.UpdatedAt != 42 {
		t.Errorf("settings = %+v", snap.Settings)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := storage.Open("redis", "", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
