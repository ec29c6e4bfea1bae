// Package session tracks open clock-in sessions, at most one per person.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// Policy decides what ClockIn does when the person already has a session.
type Policy string

const (
	// PolicyOverwrite silently replaces the open session, discarding its start time.
	PolicyOverwrite Policy = "overwrite"
	// PolicyReject refuses the second clock-in with ErrAlreadyClockedIn.
	PolicyReject Policy = "reject"
	// PolicyRestart closes the open session into an entry, then opens a new one.
	PolicyRestart Policy = "restart"
)

// ErrAlreadyClockedIn is returned under PolicyReject.
var ErrAlreadyClockedIn = errors.New("person is already clocked in")

// ParsePolicy maps a config value to a Policy. Empty means PolicyOverwrite.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyReject, PolicyRestart:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown double clock-in policy %q (want overwrite, reject or restart)", s)
}

// Engine holds the open sessions keyed by person name.
type Engine struct {
	zone     timecalc.Zone
	policy   Policy
	sessions map[string]model.ActiveSession
}

// New returns an engine seeded with the given sessions.
func New(zone timecalc.Zone, policy Policy, sessions map[string]model.ActiveSession) *Engine {
	e := &Engine{zone: zone, policy: policy}
	e.Replace(sessions)
	return e
}

// Replace swaps the whole session map, as on a subscription push.
func (e *Engine) Replace(sessions map[string]model.ActiveSession) {
	e.sessions = make(map[string]model.ActiveSession, len(sessions))
	for k, v := range sessions {
		e.sessions[k] = v
	}
}

// Sessions returns a copy of the open sessions.
func (e *Engine) Sessions() map[string]model.ActiveSession {
	out := make(map[string]model.ActiveSession, len(e.sessions))
	for k, v := range e.sessions {
		out[k] = v
	}
	return out
}

// Active returns the open session of person, if any.
func (e *Engine) Active(person string) (model.ActiveSession, bool) {
	s, ok := e.sessions[person]
	return s, ok
}

// ClockIn opens a session for person on job. entries are the stored closed
// entries, used to snapshot the minutes already logged today. When the
// policy is PolicyRestart and a session was open, the entry that closed it
// is returned as well.
func (e *Engine) ClockIn(person, job string, entries []model.TimeEntry) (model.ActiveSession, *model.TimeEntry, error) {
	var closed *model.TimeEntry
	if _, open := e.sessions[person]; open {
		switch e.policy {
		case PolicyReject:
			return model.ActiveSession{}, nil, fmt.Errorf("clock in %q: %w", person, ErrAlreadyClockedIn)
		case PolicyRestart:
			if entry, ok := e.ClockOut(person); ok {
				closed = &entry
				entries = append(append([]model.TimeEntry(nil), entries...), entry)
			}
		}
	}

	prior := MinutesToday(entries, person, e.zone.ISODate())
	s := model.ActiveSession{
		PersonName:                     person,
		JobName:                        job,
		StartTime:                      e.zone.NowMillis(),
		AccumulatedMsBeforeThisSession: int64(prior * 60000),
	}
	e.sessions[person] = s
	return s, closed, nil
}

// ClockOut closes the session of person into a new entry. It reports false
// and changes nothing when person has no open session.
func (e *Engine) ClockOut(person string) (model.TimeEntry, bool) {
	s, ok := e.sessions[person]
	if !ok {
		return model.TimeEntry{}, false
	}
	now := e.zone.NowMillis()
	entry := model.TimeEntry{
		ID:         timecalc.GenerateID(),
		PersonName: person,
		JobName:    s.JobName,
		Date:       e.zone.ISODate(),
		ClockIn:    e.zone.TimeOfDay(s.StartTime),
		ClockOut:   e.zone.TimeOfDay(now),
		Lunch30Min: false,
		Notes:      fmt.Sprintf("Clock session: %s", s.JobName),
		CreatedAt:  now,
		// Not clamped: clock skew may make this negative.
		DurationMins: float64(now-s.StartTime) / 60000,
	}
	delete(e.sessions, person)
	return entry, true
}

// LiveElapsed returns the time person has worked today: closed entries plus
// the running session, if any. It has no side effects.
func (e *Engine) LiveElapsed(person string, entries []model.TimeEntry) time.Duration {
	total := timecalc.MinutesToDuration(MinutesToday(entries, person, e.zone.ISODate()))
	if s, ok := e.sessions[person]; ok {
		total += time.Duration(e.zone.NowMillis()-s.StartTime) * time.Millisecond
	}
	return total
}

// MinutesToday sums DurationMins of the entries of person dated today.
func MinutesToday(entries []model.TimeEntry, person, today string) float64 {
	var total float64
	for _, en := range entries {
		if en.PersonName == person && en.Date == today {
			total += en.DurationMins
		}
	}
	return total
}
