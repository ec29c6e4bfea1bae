package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var (
	reportRange  rangeFlags
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time per person per day (this week by default)",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportRange.register(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format: text, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		f, err := reportRange.filter(a.tracker.Zone(), rangeWeek)
		if err != nil {
			return err
		}
		reports, err := a.tracker.Report(f)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch reportFormat {
		case "csv":
			return report.WriteCSV(out, reports)
		case "json":
			if reports == nil {
				reports = []report.PersonReport{}
			}
			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case "text":
			if len(reports) == 0 {
				fmt.Fprintln(out, "No entries found.")
				return nil
			}
			fmt.Fprintf(out, "%s\n\n", rangeLabel(f))
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, report.PlainText(r))
			}
		default:
			return fmt.Errorf("unknown format %q (want text, csv or json)", reportFormat)
		}
		return nil
	})
}

func rangeLabel(f report.Filter) string {
	switch {
	case f.From == "" && f.To == "":
		return "All dates"
	case f.From == f.To:
		return f.From
	case f.From == "":
		return "Until " + f.To
	case f.To == "":
		return "From " + f.From
	}
	if from, err := timecalc.ParseDate(f.From); err == nil {
		if to, err := timecalc.ParseDate(f.To); err == nil {
			return fmt.Sprintf("%s to %s", from.Format("Mon Jan 2"), to.Format("Mon Jan 2 2006"))
		}
	}
	return f.From + " to " + f.To
}
