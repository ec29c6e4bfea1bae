package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// TotalLabel heads the trailing row of each person's table.
const TotalLabel = "TOTAL"

// SpreadsheetRows returns one [date, jobs, H:MM] row per day of r followed by
// a TOTAL row.
func SpreadsheetRows(r PersonReport) [][]string {
	rows := make([][]string, 0, len(r.Days)+1)
	for _, d := range r.Days {
		rows = append(rows, []string{
			d.Date,
			strings.Join(d.JobNames, ", "),
			timecalc.MinutesToHoursString(d.TotalMinutes),
		})
	}
	rows = append(rows, []string{TotalLabel, "", timecalc.MinutesToHoursString(r.TotalMinutes)})
	return rows
}

// WriteCSV writes the spreadsheet rows of every report with a leading person
// column.
func WriteCSV(w io.Writer, reports []PersonReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"person", "date", "jobs", "total"}); err != nil {
		return err
	}
	for _, r := range reports {
		for _, row := range SpreadsheetRows(r) {
			if err := cw.Write(append([]string{r.PersonName}, row...)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// PlainText renders r as a fixed-width table for pasting into chat or email.
func PlainText(r PersonReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.PersonName)
	fmt.Fprintf(&b, "%-10s  %-20s  %s\n", "Date", "Jobs", "Total")
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	for _, d := range r.Days {
		fmt.Fprintf(&b, "%-10.10s  %-20.20s  %s\n",
			d.Date, strings.Join(d.JobNames, ", "), timecalc.MinutesToHoursString(d.TotalMinutes))
	}
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	fmt.Fprintf(&b, "%-10s  %-20s  %s\n", TotalLabel, "", timecalc.MinutesToHoursString(r.TotalMinutes))
	return b.String()
}
