package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

var (
	approveRange rangeFlags
	approveYes   bool
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve reviewed time, removing its entries",
	Long: `Approve the entries selected by the filters. Approval is final: the
entries are deleted from the store. Without --yes only a summary of what
would be removed is printed.`,
	Args: cobra.NoArgs,
	RunE: runApprove,
}

func init() {
	approveRange.register(approveCmd)
	approveCmd.Flags().BoolVar(&approveYes, "yes", false, "Remove the entries")
}

func runApprove(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		out := cmd.OutOrStdout()
		f, err := approveRange.filter(a.tracker.Zone(), rangeAll)
		if err != nil {
			return err
		}
		reports, err := a.tracker.Report(f)
		if err != nil {
			return err
		}
		ids := report.ApprovalIDs(reports)
		if len(ids) == 0 {
			fmt.Fprintln(out, "Nothing to approve.")
			return nil
		}

		for _, r := range reports {
			fmt.Fprintf(out, "  %-20s %3d day(s)  %s\n", r.PersonName, len(r.Days), timecalc.MinutesToHoursString(r.TotalMinutes))
		}
		if !approveYes {
			fmt.Fprintf(out, "Re-run with --yes to approve and remove these %d entries.\n", len(ids))
			return nil
		}
		removed := a.tracker.Approve(ids)
		fmt.Fprintf(out, "Approved %d entries.\n", len(removed))
		return nil
	})
}
