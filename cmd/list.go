package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var (
	listRange rangeFlags
	listIDs   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries (today by default)",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listRange.register(listCmd)
	listCmd.Flags().BoolVar(&listIDs, "ids", false, "Show entry ids")
}

func runList(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		f, err := listRange.filter(a.tracker.Zone(), rangeToday)
		if err != nil {
			return err
		}
		entries, err := filterEntries(a.tracker.Entries(), f)
		if err != nil {
			return err
		}
		printList(cmd.OutOrStdout(), entries, listIDs)
		return nil
	})
}

// filterEntries keeps the entries a report with f would include, ordered by
// date, clock-in and person.
func filterEntries(entries []model.TimeEntry, f report.Filter) ([]model.TimeEntry, error) {
	reports, err := report.Build(entries, f)
	if err != nil {
		return nil, err
	}
	keep := map[string]bool{}
	for _, id := range report.ApprovalIDs(reports) {
		keep[id] = true
	}
	var out []model.TimeEntry
	for _, e := range entries {
		if keep[e.ID] {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].ClockIn != out[j].ClockIn {
			return out[i].ClockIn < out[j].ClockIn
		}
		return out[i].PersonName < out[j].PersonName
	})
	return out, nil
}

// printList groups entries by date and prints them.
func printList(w io.Writer, entries []model.TimeEntry, showIDs bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		if e.Date != currentDay {
			fmt.Fprintln(w, e.Date)
			currentDay = e.Date
		}

		lunch := ""
		if e.Lunch30Min {
			lunch = ", lunch"
		}
		id := ""
		if showIDs {
			id = "  [" + e.ID + "]"
		}
		fmt.Fprintf(w, "  %8s–%-8s  %-20s %-22s (%s%s)%s\n",
			timecalc.To12Hour(e.ClockIn), timecalc.To12Hour(e.ClockOut),
			e.PersonName, e.JobName,
			timecalc.MinutesToHoursString(e.DurationMins), lunch, id)
	}
}
