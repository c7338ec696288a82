package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/exchange"
	"github.com/sadopc/liftlog/internal/store"
)

func newWorkoutsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workouts",
		Aliases: []string{"wo"},
		Short:   "List and back up workouts",
	}
	cmd.AddCommand(
		newWorkoutsListCommand(rt),
		newWorkoutsExportCommand(rt),
	)
	return cmd
}

func newWorkoutsListCommand(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent workouts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.db()
			if err != nil {
				return err
			}
			workouts, err := s.ListRecentWorkouts(limit)
			if err != nil {
				return fmt.Errorf("list workouts: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(workouts) == 0 {
				fmt.Fprintln(out, "No workouts yet.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, w := range workouts {
				state := color.GreenString("finished")
				dur := exchange.FormatDuration(w.Duration())
				if w.Status == store.StatusInProgress {
					state = color.YellowString("running ")
					dur = "--:--:--"
				}
				note := ""
				if w.Note != nil {
					note = faint.Sprintf(" (%s)", *w.Note)
				}
				fmt.Fprintf(out, "%s %s %s %s %s%s\n",
					faint.Sprintf("%4d", w.ID),
					w.Date,
					w.StartTime.Local().Format("15:04"),
					dur,
					state,
					note)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max number of workouts")
	return cmd
}

func newWorkoutsExportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Back up every workout with its sets as JSON (\"-\" writes to stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.db()
			if err != nil {
				return err
			}
			if args[0] == "-" {
				return exchange.WriteWorkoutsJSON(cmd.OutOrStdout(), s)
			}
			if err := exchange.WorkoutsToJSON(s, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported workouts to %s", args[0]))
			return nil
		},
	}
}
