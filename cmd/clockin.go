package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var clockInJob string

var clockInCmd = &cobra.Command{
	Use:     "clock-in <person>",
	Aliases: []string{"in", "start"},
	Short:   "Start a work session for a person",
	Long: `Start a work session for a person on a job site.

Clocking in someone who is already clocked in follows [sessions]
double_clock_in in config.toml: overwrite (default), reject or restart.`,
	Args: cobra.ExactArgs(1),
	RunE: runClockIn,
}

func init() {
	clockInCmd.Flags().StringVar(&clockInJob, "job", "", "Job site (defaults to the first registered job)")
}

func runClockIn(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		person := strings.TrimSpace(args[0])
		_, wasActive := a.tracker.Sessions()[person]

		s, err := a.tracker.ClockIn(person, clockInJob)
		if err != nil {
			return err
		}
		if wasActive {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s was already clocked in; policy %q applied\n", person, a.cfg.Sessions.DoubleClockIn)
		}
		zone := a.tracker.Zone()
		fmt.Fprintf(cmd.OutOrStdout(), "Clocked in %s on %q at %s\n",
			s.PersonName, s.JobName, timecalc.To12Hour(zone.TimeOfDay(s.StartTime)))
		return nil
	})
}
