package tracker_test

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/session"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
	"github.com/Abcdabansu666/TimeSheet/internal/validate"
)

// recorder captures every persisted change in call order.
type recorder struct {
	upserts  []model.TimeEntry
	deletes  []string
	settings []model.Settings
}

func (r *recorder) UpsertEntry(e model.TimeEntry) { r.upserts = append(r.upserts, e) }
func (r *recorder) DeleteEntry(id string)         { r.deletes = append(r.deletes, id) }
func (r *recorder) SaveSettings(s model.Settings) { r.settings = append(r.settings, s) }

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTracker(t *testing.T, entries []model.TimeEntry, settings model.Settings) (*tracker.Tracker, *recorder, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 2, 1, 13, 0, 0, 0, time.UTC)}
	z, err := timecalc.NewZone("America/New_York", c.Now)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	tr := tracker.New(tracker.Options{Zone: z, Policy: session.PolicyOverwrite, Persister: rec}, entries, settings)
	return tr, rec, c
}

func TestClockInOutPersists(t *testing.T) {
	tr, rec, c := newTracker(t, nil, model.DefaultSettings())

	if _, err := tr.ClockIn("Ann", ""); err != nil {
		t.Fatal(err)
	}
	if len(rec.settings) != 1 {
		t.Fatalf("settings saves = %d, want 1", len(rec.settings))
	}
	saved := rec.settings[0]
	if _, ok := saved.ActiveSessions["Ann"]; !ok || saved.UpdatedAt == 0 {
		t.Errorf("saved settings = %+v", saved)
	}
	if got := tr.Sessions()["Ann"].JobName; got != "General Construction" {
		t.Errorf("default job = %q", got)
	}

	c.now = c.now.Add(2 * time.Hour)
	e, ok := tr.ClockOut("Ann")
	if !ok {
		t.Fatal("ClockOut = false")
	}
	if e.DurationMins != 120 || e.Date != "2026-02-01" || e.ClockIn != "08:00" || e.ClockOut != "10:00" {
		t.Errorf("entry = %+v", e)
	}
	if len(rec.upserts) != 1 || rec.upserts[0].ID != e.ID {
		t.Errorf("upserts = %+v", rec.upserts)
	}
	if len(rec.settings) != 2 || len(rec.settings[1].ActiveSessions) != 0 {
		t.Errorf("settings after clock-out = %+v", rec.settings)
	}
	if len(tr.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(tr.Entries()))
	}
	if got := tr.LiveElapsed("Ann"); got != 2*time.Hour {
		t.Errorf("LiveElapsed = %v, want 2h", got)
	}
}

func TestClockOutNotClockedIn(t *testing.T) {
	tr, rec, _ := newTracker(t, nil, model.DefaultSettings())
	if _, ok := tr.ClockOut("Ann"); ok {
		t.Error("ClockOut = true")
	}
	if len(rec.upserts)+len(rec.settings) != 0 {
		t.Error("no-op clock-out persisted something")
	}
}

func TestClockInBlankPerson(t *testing.T) {
	tr, _, _ := newTracker(t, nil, model.DefaultSettings())
	if _, err := tr.ClockIn("  ", "Maintenance"); !errors.Is(err, tracker.ErrNoPerson) {
		t.Errorf("err = %v, want ErrNoPerson", err)
	}
}

func TestSaveEntry(t *testing.T) {
	tr, rec, _ := newTracker(t, nil, model.DefaultSettings())

	in := model.TimeEntry{
		PersonName: "Ann", JobName: "Maintenance", Date: "2026-02-01",
		ClockIn: "08:00", ClockOut: "12:00", Lunch30Min: true,
		DurationMins: 9999,
	}
	saved, err := tr.SaveEntry(in)
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || saved.CreatedAt == 0 {
		t.Errorf("new entry missing id or created_at: %+v", saved)
	}
	if saved.DurationMins != 210 {
		t.Errorf("DurationMins = %v, want recomputed 210", saved.DurationMins)
	}

	saved.ClockOut = "13:00"
	saved.CreatedAt = 0
	edited, err := tr.SaveEntry(saved)
	if err != nil {
		t.Fatal(err)
	}
	if edited.ID != saved.ID || edited.DurationMins != 270 {
		t.Errorf("edited = %+v", edited)
	}
	if got, _ := tr.Entry(saved.ID); got.CreatedAt == 0 {
		t.Error("edit lost CreatedAt")
	}
	if len(tr.Entries()) != 1 || len(rec.upserts) != 2 {
		t.Errorf("entries = %d, upserts = %d", len(tr.Entries()), len(rec.upserts))
	}
}

func TestSaveEntryInvalid(t *testing.T) {
	tr, rec, _ := newTracker(t, nil, model.DefaultSettings())
	_, err := tr.SaveEntry(model.TimeEntry{PersonName: "Ann", Date: "2026-02-01", ClockIn: "09:00", ClockOut: "09:00"})
	if !errors.Is(err, validate.ErrNotAfter) {
		t.Fatalf("err = %v, want ErrNotAfter", err)
	}
	if len(tr.Entries()) != 0 || len(rec.upserts) != 0 {
		t.Error("invalid entry was stored")
	}
}

func TestApproveRemovesOnlyGivenIDs(t *testing.T) {
	entries := []model.TimeEntry{
		{ID: "a1", PersonName: "Alice", Date: "2024-01-01", DurationMins: 60, CreatedAt: 1},
		{ID: "a2", PersonName: "Alice", Date: "2024-01-01", DurationMins: 30, CreatedAt: 2},
		{ID: "b1", PersonName: "Bob", Date: "2024-01-02", DurationMins: 45, CreatedAt: 3},
	}
	tr, rec, _ := newTracker(t, entries, model.DefaultSettings())

	reports, err := tr.Report(report.Filter{Person: "Alice"})
	if err != nil {
		t.Fatal(err)
	}
	removed := tr.Approve(append(report.ApprovalIDs(reports), "ghost"))
	sort.Strings(removed)
	if !reflect.DeepEqual(removed, []string{"a1", "a2"}) {
		t.Errorf("removed = %v", removed)
	}
	if !reflect.DeepEqual(rec.deletes, []string{"a1", "a2"}) {
		t.Errorf("deletes = %v", rec.deletes)
	}
	left := tr.Entries()
	if len(left) != 1 || left[0].ID != "b1" {
		t.Errorf("left = %+v", left)
	}
}

func TestReportFollowsCreationOrder(t *testing.T) {
	entries := []model.TimeEntry{
		{ID: "m", PersonName: "Ann", JobName: "Morning site", Date: "2026-02-01", DurationMins: 120, CreatedAt: 1},
		{ID: "a", PersonName: "Ann", JobName: "Afternoon site", Date: "2026-02-01", DurationMins: 90, CreatedAt: 2},
		{ID: "m2", PersonName: "Ann", JobName: "Morning site", Date: "2026-02-01", DurationMins: 30, CreatedAt: 3},
	}
	tr, _, _ := newTracker(t, entries, model.DefaultSettings())

	reports, err := tr.Report(report.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || len(reports[0].Days) != 1 {
		t.Fatalf("reports = %+v", reports)
	}
	day := reports[0].Days[0]
	if want := []string{"Morning site", "Afternoon site"}; !reflect.DeepEqual(day.JobNames, want) {
		t.Errorf("jobs = %v, want %v", day.JobNames, want)
	}
	if want := []string{"m", "a", "m2"}; !reflect.DeepEqual(day.EntryIDs, want) {
		t.Errorf("ids = %v, want %v", day.EntryIDs, want)
	}
	if day.TotalMinutes != 240 {
		t.Errorf("total = %v", day.TotalMinutes)
	}
}

func TestImport(t *testing.T) {
	tr, rec, _ := newTracker(t, nil, model.Settings{Jobs: []string{"Roofing", "Framing"}})

	p := tr.PreviewImport("John | 2026-02-01 | 08:00-17:00 | lunch\nBadLine")
	if len(p.Lines) != 2 {
		t.Fatalf("lines = %d", len(p.Lines))
	}
	if len(tr.Entries()) != 0 {
		t.Fatal("preview stored entries")
	}

	added := tr.ConfirmImport(p)
	if len(added) != 1 {
		t.Fatalf("added = %d, want 1", len(added))
	}
	e := added[0]
	if e.ID == "" || e.CreatedAt == 0 || e.JobName != "Framing" || e.DurationMins != 510 {
		t.Errorf("imported = %+v", e)
	}
	if len(rec.upserts) != 1 {
		t.Errorf("upserts = %d", len(rec.upserts))
	}
}

func TestRegistries(t *testing.T) {
	tr, rec, _ := newTracker(t, nil, model.Settings{})

	if got := tr.Jobs(); !reflect.DeepEqual(got, model.DefaultJobs) {
		t.Errorf("Jobs = %v, want defaults", got)
	}
	for _, name := range []string{"Zoe", "adam", "Zoe"} {
		if _, err := tr.AddPerson(name); err != nil {
			t.Fatal(err)
		}
	}
	if got := tr.People(); !reflect.DeepEqual(got, []string{"Zoe", "adam"}) {
		t.Errorf("People = %v", got)
	}
	if len(rec.settings) != 2 {
		t.Errorf("settings saves = %d, want 2 (duplicate is not saved)", len(rec.settings))
	}
	if _, err := tr.AddJob(""); !errors.Is(err, tracker.ErrNoJob) {
		t.Errorf("AddJob(\"\") err = %v", err)
	}
	if added, _ := tr.AddJob("Roofing"); !added {
		t.Error("AddJob(Roofing) = false")
	}
	last := rec.settings[len(rec.settings)-1]
	if len(last.Jobs) != 4 || len(last.People) != 2 {
		t.Errorf("saved settings = %+v", last)
	}
}

func TestApplyPushes(t *testing.T) {
	tr, rec, _ := newTracker(t, []model.TimeEntry{{ID: "old"}}, model.DefaultSettings())

	tr.ApplyEntries([]model.TimeEntry{{ID: "x"}, {ID: "y"}})
	if _, err := tr.Entry("old"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("old entry survived push: %v", err)
	}
	tr.ApplySettings(model.Settings{
		People:         []string{"Bob"},
		Jobs:           []string{},
		ActiveSessions: map[string]model.ActiveSession{"Bob": {PersonName: "Bob", JobName: "Maintenance"}},
	})
	if got := tr.People(); !reflect.DeepEqual(got, []string{"Bob"}) {
		t.Errorf("People = %v", got)
	}
	if got := tr.Jobs(); len(got) != 0 {
		t.Errorf("Jobs = %v, want explicit empty list kept", got)
	}
	if _, ok := tr.Sessions()["Bob"]; !ok {
		t.Error("pushed session missing")
	}
	if len(rec.upserts)+len(rec.deletes)+len(rec.settings) != 0 {
		t.Error("pushes must not be persisted back")
	}
}
