// Package tracker holds the application state shared by every surface: the
// closed entries, open sessions and the people and job registries.
package tracker

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/bulk"
	"github.com/Abcdabansu666/TimeSheet/internal/entrystore"
	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/session"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/validate"
)

var (
	// ErrNoPerson is returned when a person name is blank.
	ErrNoPerson = errors.New("person name is required")
	// ErrNoJob is returned when a job name is blank.
	ErrNoJob = errors.New("job name is required")
	// ErrNotFound is returned for an unknown entry id.
	ErrNotFound = errors.New("entry not found")
)

// Persister receives every state change. Calls must not block; failures are
// the persister's concern and never reach the caller.
type Persister interface {
	UpsertEntry(e model.TimeEntry)
	DeleteEntry(id string)
	SaveSettings(s model.Settings)
}

// Options configures a Tracker.
type Options struct {
	Zone      timecalc.Zone
	Policy    session.Policy
	Persister Persister
	Logger    *log.Logger
}

// Tracker is safe for concurrent use. Each method is atomic with respect to
// the in-memory state.
type Tracker struct {
	mu       sync.Mutex
	zone     timecalc.Zone
	entries  *entrystore.Store
	sessions *session.Engine
	people   []string
	jobs     []string
	persist  Persister
	logger   *log.Logger
}

// New returns a tracker seeded with a loaded snapshot.
func New(opts Options, entries []model.TimeEntry, settings model.Settings) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	persist := opts.Persister
	if persist == nil {
		persist = nopPersister{}
	}
	t := &Tracker{
		zone:     opts.Zone,
		entries:  entrystore.New(entries),
		sessions: session.New(opts.Zone, opts.Policy, settings.ActiveSessions),
		persist:  persist,
		logger:   logger,
	}
	t.people = model.SortedNames(settings.People)
	t.jobs = model.SortedNames(jobsOrDefault(settings.Jobs))
	return t
}

// Zone returns the operating timezone.
func (t *Tracker) Zone() timecalc.Zone { return t.zone }

// ClockIn opens a session for person. A blank job falls back to the first
// registered job. Under the restart policy a previously open session is
// closed into an entry first.
func (t *Tracker) ClockIn(person, job string) (model.ActiveSession, error) {
	person, job = strings.TrimSpace(person), strings.TrimSpace(job)
	if person == "" {
		return model.ActiveSession{}, ErrNoPerson
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if job == "" {
		job = t.defaultJobLocked()
	}
	s, closed, err := t.sessions.ClockIn(person, job, t.entries.List())
	if err != nil {
		return model.ActiveSession{}, err
	}
	if closed != nil {
		t.entries.Upsert(*closed)
		t.persist.UpsertEntry(*closed)
		t.logger.Printf("clock-in: closed previous session of %s (%s)", person, timecalc.MinutesToHoursString(closed.DurationMins))
	}
	t.saveSettingsLocked()
	t.logger.Printf("clock-in: %s on %s", person, job)
	return s, nil
}

// ClockOut closes the session of person into a new entry. It reports false
// when person was not clocked in.
func (t *Tracker) ClockOut(person string) (model.TimeEntry, bool) {
	person = strings.TrimSpace(person)

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions.ClockOut(person)
	if !ok {
		return model.TimeEntry{}, false
	}
	t.entries.Upsert(e)
	t.persist.UpsertEntry(e)
	t.saveSettingsLocked()
	t.logger.Printf("clock-out: %s after %s", person, timecalc.MinutesToHoursString(e.DurationMins))
	return e, true
}

// LiveElapsed returns the time person has worked today including any open
// session.
func (t *Tracker) LiveElapsed(person string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions.LiveElapsed(person, t.entries.List())
}

// Sessions returns a copy of the open sessions keyed by person.
func (t *Tracker) Sessions() map[string]model.ActiveSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions.Sessions()
}

// SaveEntry validates e, recomputes its duration and stores it. An entry
// without an ID is new and gets an ID and creation time; an entry with an ID
// fully replaces the stored one.
func (t *Tracker) SaveEntry(e model.TimeEntry) (model.TimeEntry, error) {
	e.PersonName = strings.TrimSpace(e.PersonName)
	e.JobName = strings.TrimSpace(e.JobName)
	e.Date = strings.TrimSpace(e.Date)
	e.ClockIn = strings.TrimSpace(e.ClockIn)
	e.ClockOut = strings.TrimSpace(e.ClockOut)
	if err := validate.Entry(e); err != nil {
		return model.TimeEntry{}, err
	}
	e.DurationMins = timecalc.DurationMinutes(e.ClockIn, e.ClockOut, e.Lunch30Min)

	t.mu.Lock()
	defer t.mu.Unlock()

	if e.ID == "" {
		e.ID = timecalc.GenerateID()
		e.CreatedAt = t.zone.NowMillis()
	} else if e.CreatedAt == 0 {
		if old, ok := t.entries.Get(e.ID); ok {
			e.CreatedAt = old.CreatedAt
		} else {
			e.CreatedAt = t.zone.NowMillis()
		}
	}
	t.entries.Upsert(e)
	t.persist.UpsertEntry(e)
	return e, nil
}

// DeleteEntry removes the entry with id. It reports false for unknown ids.
func (t *Tracker) DeleteEntry(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.entries.Remove(id) {
		return false
	}
	t.persist.DeleteEntry(id)
	return true
}

// Entries lists all entries, newest first.
func (t *Tracker) Entries() []model.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.List()
}

// Entry returns the entry with id.
func (t *Tracker) Entry(id string) (model.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries.Get(id)
	if !ok {
		return model.TimeEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Report aggregates the stored entries. Entries are fed oldest first, so job
// names and entry ids within a day follow creation order.
func (t *Tracker) Report(f report.Filter) ([]report.PersonReport, error) {
	t.mu.Lock()
	entries := t.entries.List()
	t.mu.Unlock()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt < entries[j].CreatedAt
	})
	return report.Build(entries, f)
}

// Approve finalizes a reviewed batch by deleting its entries. It returns the
// ids that were present and removed; unknown ids are ignored.
func (t *Tracker) Approve(ids []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := t.entries.RemoveMany(ids)
	for _, id := range removed {
		t.persist.DeleteEntry(id)
	}
	t.logger.Printf("approve: removed %d of %d entries", len(removed), len(ids))
	return removed
}

// PreviewImport parses pasted lines. Nothing is stored.
func (t *Tracker) PreviewImport(text string) bulk.Preview {
	t.mu.Lock()
	job := t.defaultJobLocked()
	t.mu.Unlock()
	return bulk.Parse(text, bulk.Options{DefaultJob: job})
}

// ConfirmImport stores the importable entries of p and returns them with
// their new IDs.
func (t *Tracker) ConfirmImport(p bulk.Preview) []model.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.zone.NowMillis()
	var added []model.TimeEntry
	for _, e := range p.Importable() {
		e.ID = timecalc.GenerateID()
		e.CreatedAt = now
		e.DurationMins = timecalc.DurationMinutes(e.ClockIn, e.ClockOut, e.Lunch30Min)
		t.entries.Upsert(e)
		t.persist.UpsertEntry(e)
		added = append(added, e)
	}
	t.logger.Printf("import: added %d entries, skipped %d lines", len(added), len(p.Failed()))
	return added
}

// AddPerson registers name. It reports false when name is already known.
func (t *Tracker) AddPerson(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrNoPerson
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var added bool
	t.people, added = addName(t.people, name)
	if added {
		t.saveSettingsLocked()
	}
	return added, nil
}

// AddJob registers name. It reports false when name is already known.
func (t *Tracker) AddJob(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrNoJob
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var added bool
	t.jobs, added = addName(t.jobs, name)
	if added {
		t.saveSettingsLocked()
	}
	return added, nil
}

// People returns the registered people, sorted.
func (t *Tracker) People() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.people...)
}

// Jobs returns the registered jobs, sorted.
func (t *Tracker) Jobs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.jobs...)
}

// Settings returns the current settings document.
func (t *Tracker) Settings() model.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settingsLocked()
}

// ApplyEntries replaces every entry with a pushed snapshot.
func (t *Tracker) ApplyEntries(entries []model.TimeEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries.Replace(entries)
}

// ApplySettings replaces people, jobs and sessions with a pushed snapshot.
func (t *Tracker) ApplySettings(s model.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.people = model.SortedNames(s.People)
	t.jobs = model.SortedNames(jobsOrDefault(s.Jobs))
	t.sessions.Replace(s.ActiveSessions)
}

func (t *Tracker) settingsLocked() model.Settings {
	return model.Settings{
		People:         append([]string{}, t.people...),
		Jobs:           append([]string{}, t.jobs...),
		ActiveSessions: t.sessions.Sessions(),
	}
}

func (t *Tracker) saveSettingsLocked() {
	s := t.settingsLocked()
	s.UpdatedAt = t.zone.NowMillis()
	t.persist.SaveSettings(s)
}

func (t *Tracker) defaultJobLocked() string {
	if len(t.jobs) > 0 {
		return t.jobs[0]
	}
	return model.DefaultJobs[0]
}

func jobsOrDefault(jobs []string) []string {
	if jobs == nil {
		return model.DefaultJobs
	}
	return jobs
}

func addName(names []string, name string) ([]string, bool) {
	for _, n := range names {
		if n == name {
			return names, false
		}
	}
	return model.SortedNames(append(names, name)), true
}

type nopPersister struct{}

func (nopPersister) UpsertEntry(model.TimeEntry) {}
func (nopPersister) DeleteEntry(string)          {}
func (nopPersister) SaveSettings(model.Settings) {}
