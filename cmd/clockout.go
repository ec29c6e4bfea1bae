package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var clockOutCmd = &cobra.Command{
	Use:     "clock-out <person>",
	Aliases: []string{"out", "stop"},
	Short:   "End the work session of a person",
	Args:    cobra.ExactArgs(1),
	RunE:    runClockOut,
}

func runClockOut(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		person := args[0]
		e, ok := a.tracker.ClockOut(person)
		if !ok {
			return fmt.Errorf("%s is not clocked in", person)
		}
		elapsed := int64(timecalc.MinutesToDuration(e.DurationMins) / time.Second)
		fmt.Fprintf(cmd.OutOrStdout(), "Clocked out %s (%s-%s). Elapsed: %s\n",
			e.PersonName, timecalc.To12Hour(e.ClockIn), timecalc.To12Hour(e.ClockOut), formatElapsed(elapsed))
		return nil
	})
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
