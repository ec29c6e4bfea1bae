package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/bulk"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import pasted lines of \"name | date | start-end\"",
	Long: `Import time entries from lines of the form

  John Doe | 2026-01-30 | 08:00 - 17:00 | lunch

read from file, or from stdin when file is omitted or "-". Any mention of
lunch, break or 30 on a line deducts a 30 minute lunch. Every entry gets the
first registered job. Lines that do not parse or fail validation are
reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without saving")
}

func runImport(cmd *cobra.Command, args []string) error {
	var src io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return withApp(cmd.Context(), func(a *app) error {
		out := cmd.OutOrStdout()
		p := a.tracker.PreviewImport(string(data))
		if len(p.Lines) == 0 {
			fmt.Fprintln(out, "No lines to import.")
			return nil
		}
		printPreview(out, p)

		if importDryRun {
			fmt.Fprintf(out, "[dry-run] %d line(s) would be imported, %d skipped.\n", len(p.Importable()), len(p.Failed()))
			return nil
		}
		added := a.tracker.ConfirmImport(p)
		fmt.Fprintf(out, "Imported %d entries, skipped %d line(s).\n", len(added), len(p.Failed()))
		return nil
	})
}

func printPreview(w io.Writer, p bulk.Preview) {
	for _, l := range p.Lines {
		if !l.OK() {
			fmt.Fprintf(w, "  line %-3d SKIP  %s\n             %v\n", l.No, l.Raw, l.Err)
			continue
		}
		e := l.Entry
		lunch := ""
		if e.Lunch30Min {
			lunch = " lunch"
		}
		fmt.Fprintf(w, "  line %-3d OK    %-20s %s %s-%s%s (%s)\n",
			l.No, e.PersonName, e.Date, e.ClockIn, e.ClockOut, lunch,
			timecalc.MinutesToHoursString(e.DurationMins))
	}
}
