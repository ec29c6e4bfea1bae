// Package bulk turns pasted free-text lines into candidate time entries.
//
// Each line has the form
//
//	name | date | HH:mm-HH:mm | optional lunch marker
//
// Lines are parsed independently; a bad line never stops the others.
package bulk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/validate"
)

// Notes is written on every imported entry.
const Notes = "Bulk import"

// rangeSeparators are the hyphen and dash runes accepted between two times.
const rangeSeparators = "-‐‑‒–—―−"

// lunchMarkers are matched case-insensitively against the whole raw line.
// "30" alone matches, so any line mentioning 30 gets the lunch deduction.
var lunchMarkers = []string{"lunch", "break", "30", "30min", "0:30"}

// ParseError reports a line that does not have the expected field layout.
type ParseError struct {
	Line   int
	Fields int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: expected name | date | time range, got %d field(s)", e.Line, e.Fields)
}

// Options configures Parse.
type Options struct {
	// DefaultJob is the job assigned to every parsed entry.
	DefaultJob string
}

// Line is one non-blank input line and its outcome. Err is a *ParseError for
// malformed lines and a *validate.Error for lines that parse but fail
// validation.
type Line struct {
	No    int             `json:"line"`
	Raw   string          `json:"raw"`
	Entry model.TimeEntry `json:"entry"`
	Err   error           `json:"-"`
}

// OK reports whether the line can be imported.
func (l Line) OK() bool { return l.Err == nil }

// Preview is the result of parsing one paste. It is independent of any
// stored entries.
type Preview struct {
	Lines []Line `json:"lines"`
}

// Importable returns the entries of lines that passed.
func (p Preview) Importable() []model.TimeEntry {
	var out []model.TimeEntry
	for _, l := range p.Lines {
		if l.OK() {
			out = append(out, l.Entry)
		}
	}
	return out
}

// Failed returns the lines that will not be imported.
func (p Preview) Failed() []Line {
	var out []Line
	for _, l := range p.Lines {
		if !l.OK() {
			out = append(out, l)
		}
	}
	return out
}

// Parse parses text line by line. Blank lines are skipped. Entries have no
// ID or CreatedAt yet; those are assigned on confirm.
func Parse(text string, opts Options) Preview {
	var p Preview
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		p.Lines = append(p.Lines, parseLine(i+1, raw, opts))
	}
	return p
}

func parseLine(no int, raw string, opts Options) Line {
	l := Line{No: no, Raw: raw}

	fields := strings.Split(raw, "|")
	if len(fields) < 3 {
		l.Err = &ParseError{Line: no, Fields: len(fields)}
		return l
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	in, out := splitRange(fields[2])
	lunch := hasLunchMarker(raw)
	l.Entry = model.TimeEntry{
		PersonName:   fields[0],
		JobName:      opts.DefaultJob,
		Date:         fields[1],
		ClockIn:      in,
		ClockOut:     out,
		Lunch30Min:   lunch,
		Notes:        Notes,
		DurationMins: timecalc.DurationMinutes(in, out, lunch),
	}
	l.Err = validate.Entry(l.Entry)
	return l
}

// splitRange splits "08:00-17:00" on the first dash-family rune. A missing
// half becomes "00:00".
func splitRange(s string) (string, string) {
	s = strings.Trim(strings.TrimSpace(s), `"'“”`)
	in, out := s, ""
	if i := strings.IndexAny(s, rangeSeparators); i >= 0 {
		_, width := utf8.DecodeRuneInString(s[i:])
		in, out = s[:i], s[i+width:]
	}
	in, out = strings.TrimSpace(in), strings.TrimSpace(out)
	if in == "" {
		in = "00:00"
	}
	if out == "" {
		out = "00:00"
	}
	return in, out
}

func hasLunchMarker(raw string) bool {
	lower := strings.ToLower(raw)
	for _, m := range lunchMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
