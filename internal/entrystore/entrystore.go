// Package entrystore keeps the in-memory set of closed time entries.
package entrystore

import (
	"sort"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
)

// Store is a set of entries keyed by ID. It is not safe for concurrent use;
// callers serialise access.
type Store struct {
	byID map[string]model.TimeEntry
}

// New returns a store holding entries. Later duplicates of an ID win.
func New(entries []model.TimeEntry) *Store {
	s := &Store{}
	s.Replace(entries)
	return s
}

// Upsert inserts e or fully replaces the entry with the same ID.
func (s *Store) Upsert(e model.TimeEntry) {
	s.byID[e.ID] = e
}

// Get returns the entry with id.
func (s *Store) Get(id string) (model.TimeEntry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Remove deletes the entry with id. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// RemoveMany removes every listed id it holds and returns the ids that were
// actually removed, in input order.
func (s *Store) RemoveMany(ids []string) []string {
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.Remove(id) {
			removed = append(removed, id)
		}
	}
	return removed
}

// List returns all entries, most recently created first. Entries created in
// the same millisecond are ordered by ID.
func (s *Store) List() []model.TimeEntry {
	out := make([]model.TimeEntry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Replace discards the current contents and loads entries.
func (s *Store) Replace(entries []model.TimeEntry) {
	s.byID = make(map[string]model.TimeEntry, len(entries))
	for _, e := range entries {
		s.byID[e.ID] = e
	}
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.byID) }
