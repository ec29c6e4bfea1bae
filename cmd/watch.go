package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/config"
	"github.com/Abcdabansu666/TimeSheet/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of who is clocked in",
	Long: `Open a live dashboard listing every person, their open session and the
time worked today, updated every second. Changes saved by other devices show
up within [remote] poll_seconds. Sync activity is logged to
~/.timesheet/timesheet.log.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dir, "timesheet.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "timesheet: ", log.LstdFlags)

	a, err := openApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer a.close()

	stopFollow := a.follow(cmd.Context())
	defer stopFollow()

	return tui.Run(a.tracker, a.queue)
}
