package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

// entryFlags back add and edit.
type entryFlags struct {
	person string
	job    string
	date   string
	in     string
	out    string
	lunch  bool
	notes  string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.person, "person", "", "Worker name")
	cmd.Flags().StringVar(&f.job, "job", "", "Job site (add defaults to the first registered job)")
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&f.in, "in", "", "Clock-in time (HH:mm)")
	cmd.Flags().StringVar(&f.out, "out", "", "Clock-out time (HH:mm)")
	cmd.Flags().BoolVar(&f.lunch, "lunch", false, "Deduct a 30 minute lunch break")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-text notes")
}

// apply copies every flag the user set onto e.
func (f entryFlags) apply(cmd *cobra.Command, e *model.TimeEntry) {
	set := cmd.Flags().Changed
	if set("person") {
		e.PersonName = f.person
	}
	if set("job") {
		e.JobName = f.job
	}
	if set("date") {
		e.Date = f.date
	}
	if set("in") {
		e.ClockIn = f.in
	}
	if set("out") {
		e.ClockOut = f.out
	}
	if set("lunch") {
		e.Lunch30Min = f.lunch
	}
	if set("notes") {
		e.Notes = f.notes
	}
}

var (
	addFlags  entryFlags
	editFlags entryFlags
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a time entry manually",
	Example: `  timesheet add --person "John Doe" --job Maintenance --in 08:00 --out 17:00 --lunch
  timesheet add --person Ann --date 2026-02-01 --in 07:30 --out 11:00`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an existing entry",
	Long:  "Change fields of an existing entry. Only the given flags are changed; the duration is recomputed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a time entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	addFlags.register(addCmd)
	editFlags.register(editCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		e := model.TimeEntry{Date: a.tracker.Zone().ISODate()}
		addFlags.apply(cmd, &e)
		if e.JobName == "" {
			if jobs := a.tracker.Jobs(); len(jobs) > 0 {
				e.JobName = jobs[0]
			}
		}
		saved, err := a.tracker.SaveEntry(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s for %s on %s (%s)\n",
			saved.ID, saved.PersonName, saved.Date, timecalc.MinutesToHoursString(saved.DurationMins))
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		e, err := a.tracker.Entry(args[0])
		if err != nil {
			return err
		}
		editFlags.apply(cmd, &e)
		saved, err := a.tracker.SaveEntry(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s %s-%s (%s)\n",
			saved.ID, saved.PersonName, saved.Date, saved.ClockIn, saved.ClockOut,
			timecalc.MinutesToHoursString(saved.DurationMins))
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if !a.tracker.DeleteEntry(args[0]) {
			return fmt.Errorf("no entry with id %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}
