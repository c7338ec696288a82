package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/store"
)

func newHistoryCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "history <exercise-id>",
		Short: "Show the best values logged per day for an exercise",
		Long: `Show, for every day with a finished workout containing the exercise, the
highest weight, reps, distance and duration logged. Use "liftlog exercises
list" to find ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid exercise id %q", args[0])
			}
			s, err := rt.db()
			if err != nil {
				return err
			}
			ex, err := s.GetExercise(id)
			if err != nil {
				return err
			}
			if ex == nil {
				return fmt.Errorf("exercise %d not found", id)
			}
			points, err := s.ExerciseHistory(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, typeColor(string(ex.Type)).Add(color.Bold).Sprint(ex.Name))
			if len(points) == 0 {
				fmt.Fprintln(out, "No finished workouts with this exercise.")
				return nil
			}
			fields := ex.Type.Fields()
			for _, p := range points {
				fmt.Fprintf(out, "%s  %s\n", p.Date, formatPoint(p, fields))
			}
			return nil
		},
	}
}

func formatPoint(p store.HistoryPoint, f store.Fields) string {
	var parts []string
	if f.Weight && p.MaxWeight != nil {
		parts = append(parts, "weight "+strconv.FormatFloat(*p.MaxWeight, 'f', -1, 64))
	}
	if f.Reps && p.MaxReps != nil {
		parts = append(parts, "reps "+strconv.Itoa(*p.MaxReps))
	}
	if f.Distance && p.MaxDistance != nil {
		parts = append(parts, "distance "+strconv.FormatFloat(*p.MaxDistance, 'f', -1, 64))
	}
	if f.Duration && p.MaxDuration != nil {
		parts = append(parts, "duration "+strconv.FormatFloat(*p.MaxDuration, 'f', -1, 64)+" min")
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, "  ")
}
