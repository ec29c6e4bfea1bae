package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status [person]",
	Short: "Show who is clocked in and time worked today",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		out := cmd.OutOrStdout()
		zone := a.tracker.Zone()
		sessions := a.tracker.Sessions()

		if len(args) == 1 {
			person := args[0]
			elapsed := a.tracker.LiveElapsed(person)
			if s, ok := sessions[person]; ok {
				fmt.Fprintf(out, "%s is clocked in:\n", person)
				fmt.Fprintf(out, "  Job: %s\n", s.JobName)
				fmt.Fprintf(out, "  Since: %s\n", timecalc.To12Hour(zone.TimeOfDay(s.StartTime)))
				fmt.Fprintf(out, "  Today: %s\n", timecalc.FormatDurationHHMMSS(elapsed))
				return nil
			}
			fmt.Fprintf(out, "%s is not clocked in.\n", person)
			fmt.Fprintf(out, "Today: %s logged.\n", timecalc.FormatDuration(elapsed))
			return nil
		}

		if len(sessions) == 0 {
			fmt.Fprintln(out, "Nobody is clocked in.")
			return nil
		}
		names := make([]string, 0, len(sessions))
		for name := range sessions {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(out, "Clocked in:")
		for _, name := range names {
			s := sessions[name]
			fmt.Fprintf(out, "  %-20s %-22s since %-8s today %s\n",
				name, s.JobName,
				timecalc.To12Hour(zone.TimeOfDay(s.StartTime)),
				timecalc.FormatDurationHHMMSS(a.tracker.LiveElapsed(name)))
		}
		return nil
	})
}
