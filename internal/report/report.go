// Package report collapses time entries into per-person, per-day summaries
// and renders them for export.
package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// AllPeople selects every person in a Filter.
const AllPeople = "all"

// Filter narrows the entries that enter a report. From and To are inclusive
// YYYY-MM-DD bounds; an empty bound leaves that side open.
type Filter struct {
	Person string
	From   string
	To     string
}

// DailySummary aggregates one person's entries on one date.
type DailySummary struct {
	Date         string   `json:"date"`
	TotalMinutes float64  `json:"total_minutes"`
	JobNames     []string `json:"job_names"`
	EntryIDs     []string `json:"entry_ids"`
}

// PersonReport aggregates one person's days, ascending by date.
type PersonReport struct {
	PersonName   string         `json:"person_name"`
	Days         []DailySummary `json:"days"`
	TotalMinutes float64        `json:"total_minutes"`
	EntryIDs     []string       `json:"entry_ids"`
}

// Build filters entries and groups them by person, then by date. Reports are
// ordered by person name, case-insensitively.
func Build(entries []model.TimeEntry, f Filter) ([]PersonReport, error) {
	from, to, err := f.bounds()
	if err != nil {
		return nil, err
	}

	type bucket struct {
		day  *DailySummary
		jobs map[string]struct{}
	}
	byPerson := map[string]map[string]*bucket{}

	for _, e := range entries {
		if !f.matchesPerson(e.PersonName) {
			continue
		}
		if from != "" || to != "" {
			d, err := timecalc.ParseDate(e.Date)
			if err != nil {
				continue
			}
			date := d.Format(timecalc.DateLayout)
			if (from != "" && date < from) || (to != "" && date > to) {
				continue
			}
		}

		days, ok := byPerson[e.PersonName]
		if !ok {
			days = map[string]*bucket{}
			byPerson[e.PersonName] = days
		}
		b, ok := days[e.Date]
		if !ok {
			b = &bucket{
				day:  &DailySummary{Date: e.Date, JobNames: []string{}, EntryIDs: []string{}},
				jobs: map[string]struct{}{},
			}
			days[e.Date] = b
		}
		b.day.TotalMinutes += e.DurationMins
		b.day.EntryIDs = append(b.day.EntryIDs, e.ID)
		if _, seen := b.jobs[e.JobName]; !seen {
			b.jobs[e.JobName] = struct{}{}
			b.day.JobNames = append(b.day.JobNames, e.JobName)
		}
	}

	reports := make([]PersonReport, 0, len(byPerson))
	for person, days := range byPerson {
		r := PersonReport{PersonName: person, Days: make([]DailySummary, 0, len(days)), EntryIDs: []string{}}
		for _, b := range days {
			r.Days = append(r.Days, *b.day)
		}
		sort.Slice(r.Days, func(i, j int) bool { return r.Days[i].Date < r.Days[j].Date })
		for _, d := range r.Days {
			r.TotalMinutes += d.TotalMinutes
			r.EntryIDs = append(r.EntryIDs, d.EntryIDs...)
		}
		reports = append(reports, r)
	}

	c := collate.New(language.Und, collate.IgnoreCase)
	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i].PersonName, reports[j].PersonName
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return a < b
	})
	return reports, nil
}

// ApprovalIDs flattens the contributing entry ids of reports.
func ApprovalIDs(reports []PersonReport) []string {
	var ids []string
	for _, r := range reports {
		ids = append(ids, r.EntryIDs...)
	}
	return ids
}

func (f Filter) matchesPerson(name string) bool {
	p := strings.TrimSpace(f.Person)
	return p == "" || strings.EqualFold(p, AllPeople) || p == name
}

func (f Filter) bounds() (string, string, error) {
	var out [2]string
	for i, s := range []string{f.From, f.To} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, err := timecalc.ParseDate(s)
		if err != nil {
			return "", "", fmt.Errorf("invalid report bound %q: %w", s, err)
		}
		out[i] = d.Format(timecalc.DateLayout)
	}
	return out[0], out[1], nil
}
