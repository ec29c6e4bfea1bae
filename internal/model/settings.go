package model

import (
	"encoding/json"
	"sort"
)

// ActiveSession is an open work period. At most one exists per person.
type ActiveSession struct {
	PersonName string `json:"person_name"`
	JobName    string `json:"job_name"`
	// StartTime is the clock-in instant in epoch milliseconds.
	StartTime int64 `json:"startTime"`
	// AccumulatedMsBeforeThisSession snapshots the minutes already logged
	// today at clock-in time. Informational only.
	AccumulatedMsBeforeThisSession int64 `json:"accumulatedMsBeforeThisSession"`
}

// Settings is the shared registry document: people, jobs and open sessions.
type Settings struct {
	People         []string                 `json:"people"`
	Jobs           []string                 `json:"jobs"`
	ActiveSessions map[string]ActiveSession `json:"activeSessions"`
	UpdatedAt      int64                    `json:"updatedAt,omitempty"`
}

// DefaultJobs is used when a settings document carries no job list.
var DefaultJobs = []string{"General Construction", "Maintenance", "Site Survey"}

// Settings document field names.
const (
	FieldPeople         = "people"
	FieldJobs           = "jobs"
	FieldActiveSessions = "activeSessions"
	FieldUpdatedAt      = "updatedAt"
)

// DefaultSettings returns the document used when nothing was ever saved.
func DefaultSettings() Settings {
	return Settings{
		People:         []string{},
		Jobs:           append([]string(nil), DefaultJobs...),
		ActiveSessions: map[string]ActiveSession{},
	}
}

// DecodeSettings builds Settings from raw document fields. Each field is
// decoded on its own so one absent or malformed field falls back to its
// default without discarding the others.
func DecodeSettings(fields map[string]json.RawMessage) Settings {
	s := DefaultSettings()

	if raw, ok := fields[FieldPeople]; ok {
		var people []string
		if err := json.Unmarshal(raw, &people); err == nil && people != nil {
			s.People = people
		}
	}
	if raw, ok := fields[FieldJobs]; ok {
		var jobs []string
		if err := json.Unmarshal(raw, &jobs); err == nil && jobs != nil {
			s.Jobs = jobs
		}
	}
	if raw, ok := fields[FieldActiveSessions]; ok {
		var sessions map[string]ActiveSession
		if err := json.Unmarshal(raw, &sessions); err == nil && sessions != nil {
			s.ActiveSessions = sessions
		}
	}
	if raw, ok := fields[FieldUpdatedAt]; ok {
		var ts int64
		if err := json.Unmarshal(raw, &ts); err == nil {
			s.UpdatedAt = ts
		}
	}
	return s
}

// DecodeSettingsJSON decodes a whole settings document. A document that is
// not a JSON object yields DefaultSettings.
func DecodeSettingsJSON(data []byte) Settings {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return DefaultSettings()
	}
	return DecodeSettings(fields)
}

// Fields encodes s into document fields, ready to merge over an existing
// document.
func (s Settings) Fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, 4)
	values := map[string]any{
		FieldPeople:         nonNil(s.People),
		FieldJobs:           nonNil(s.Jobs),
		FieldActiveSessions: s.sessionsOrEmpty(),
		FieldUpdatedAt:      s.UpdatedAt,
	}
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

func (s Settings) sessionsOrEmpty() map[string]ActiveSession {
	if s.ActiveSessions == nil {
		return map[string]ActiveSession{}
	}
	return s.ActiveSessions
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// SortedNames returns a sorted, de-duplicated copy of names.
func SortedNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
