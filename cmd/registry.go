package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

var (
	peopleCmd = newRegistryCmd("people", "person", (*tracker.Tracker).People, (*tracker.Tracker).AddPerson)
	jobsCmd   = newRegistryCmd("jobs", "job", (*tracker.Tracker).Jobs, (*tracker.Tracker).AddJob)
)

// newRegistryCmd builds "<plural>" (list) and "<plural> add <name>".
func newRegistryCmd(plural, singular string,
	list func(*tracker.Tracker) []string,
	add func(*tracker.Tracker, string) (bool, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   plural,
		Short: fmt.Sprintf("List or add %s", plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				names := list(a.tracker)
				if len(names) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s yet.\n", plural)
					return nil
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Register a %s", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				added, err := add(a.tracker, args[0])
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already registered.\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q.\n", singular, args[0])
				return nil
			})
		},
	})
	return cmd
}
