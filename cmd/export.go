package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
)

var (
	exportRange  rangeFlags
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export raw time entries",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportRange.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		f, err := exportRange.filter(a.tracker.Zone(), rangeAll)
		if err != nil {
			return err
		}
		entries, err := filterEntries(a.tracker.Entries(), f)
		if err != nil {
			return err
		}

		if exportFormat != "csv" && exportFormat != "json" {
			return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
		}
		if exportOutput == "" {
			return writeEntries(cmd.OutOrStdout(), entries)
		}

		file, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		if err := writeEntries(file, entries); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", len(entries), exportOutput)
		return nil
	})
}

// writeEntries renders entries in exportFormat.
func writeEntries(w io.Writer, entries []model.TimeEntry) error {
	if exportFormat == "json" {
		if entries == nil {
			entries = []model.TimeEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	return writeEntriesCSV(w, entries)
}

func writeEntriesCSV(w io.Writer, entries []model.TimeEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "person", "job", "clock_in", "clock_out", "lunch_30_min", "duration_minutes", "notes"}); err != nil {
		return err
	}
	for _, e := range entries {
		err := cw.Write([]string{
			e.ID,
			e.Date,
			e.PersonName,
			e.JobName,
			e.ClockIn,
			e.ClockOut,
			strconv.FormatBool(e.Lunch30Min),
			strconv.FormatFloat(e.DurationMins, 'f', -1, 64),
			e.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
