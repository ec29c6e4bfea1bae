package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// rangeFlags are the person and date filters shared by list, report,
// approve and export.
type rangeFlags struct {
	person string
	from   string
	to     string
	date   string
	today  bool
	week   bool
	all    bool
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.person, "person", "", `Only this person ("all" for everyone)`)
	cmd.Flags().StringVar(&r.from, "from", "", "Start date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&r.to, "to", "", "End date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&r.date, "date", "", "A single date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&r.today, "today", false, "Only today")
	cmd.Flags().BoolVar(&r.week, "week", false, "Only the current week (Monday to Sunday)")
	cmd.Flags().BoolVar(&r.all, "all", false, "Every date")
}

// defaultRange is applied when no date flag is given.
type defaultRange int

const (
	rangeAll defaultRange = iota
	rangeToday
	rangeWeek
)

// filter turns the flags into a report filter. Dates are resolved in the
// operating timezone of zone.
func (r rangeFlags) filter(zone timecalc.Zone, def defaultRange) (report.Filter, error) {
	f := report.Filter{Person: r.person}

	set := 0
	for _, on := range []bool{r.date != "", r.today, r.week, r.all, r.from != "" || r.to != ""} {
		if on {
			set++
		}
	}
	if set > 1 {
		return f, errors.New("use only one of --date, --today, --week, --all or --from/--to")
	}

	switch {
	case r.date != "":
		f.From, f.To = r.date, r.date
	case r.today:
		f.From, f.To = zone.ISODate(), zone.ISODate()
	case r.week:
		f.From, f.To = weekBounds(zone)
	case r.all:
	case r.from != "" || r.to != "":
		f.From, f.To = r.from, r.to
	case def == rangeToday:
		f.From, f.To = zone.ISODate(), zone.ISODate()
	case def == rangeWeek:
		f.From, f.To = weekBounds(zone)
	}
	return f, nil
}

func weekBounds(zone timecalc.Zone) (string, string) {
	monday, sunday := timecalc.WeekRange(zone.Now())
	return monday.Format(timecalc.DateLayout), sunday.Format(timecalc.DateLayout)
}
