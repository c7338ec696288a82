package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/exchange"
)

func newExercisesCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercises",
		Aliases: []string{"ex"},
		Short:   "List, export and import exercises",
	}
	cmd.AddCommand(
		newExercisesListCommand(rt),
		newExercisesExportCommand(rt),
		newExercisesImportCommand(rt),
	)
	return cmd
}

func newExercisesListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List exercises in display order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.db()
			if err != nil {
				return err
			}
			exercises, err := s.ListExercises()
			if err != nil {
				return fmt.Errorf("list exercises: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(exercises) == 0 {
				fmt.Fprintln(out, "No exercises yet.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, e := range exercises {
				muscle := ""
				if e.MuscleGroup != nil {
					muscle = faint.Sprint(*e.MuscleGroup)
				}
				fmt.Fprintf(out, "%s %s %s %s\n",
					faint.Sprintf("%4d", e.ID),
					padRight(e.Name, 24),
					typeColor(string(e.Type)).Sprint(padRight(string(e.Type), 17)),
					muscle)
			}
			return nil
		},
	}
}

func newExercisesExportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export exercises as CSV (\"-\" writes to stdout)",
		Long: `Export every exercise as CSV with the columns name,type,muscle_group,position.
Values are double-quoted and written as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.db()
			if err != nil {
				return err
			}
			exercises, err := s.ListExercises()
			if err != nil {
				return fmt.Errorf("list exercises: %w", err)
			}
			if args[0] == "-" {
				return exchange.WriteExercisesCSV(cmd.OutOrStdout(), exercises)
			}
			if err := exchange.ExercisesToCSV(exercises, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported %d exercises to %s", len(exercises), args[0]))
			return nil
		},
	}
}

func newExercisesImportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import exercises from CSV (\"-\" reads stdin)",
		Long: `Import exercises from CSV. A header row starting with "name" is skipped,
as are rows with fewer than two values. Every row becomes a new exercise,
even when one with the same name exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.db()
			if err != nil {
				return err
			}
			var n int
			if args[0] == "-" {
				n, err = exchange.ImportExercises(cmd.InOrStdin(), s)
			} else {
				n, err = exchange.ImportExercisesCSV(args[0], s)
			}
			if err != nil {
				return fmt.Errorf("import stopped after %d exercises: %w", n, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Imported %d exercises", n))
			return nil
		},
	}
}

func typeColor(t string) *color.Color {
	switch t {
	case "weight":
		return color.New(color.FgBlue)
	case "cardio":
		return color.New(color.FgCyan)
	case "bodyweight":
		return color.New(color.FgYellow)
	case "bodyweight_timer":
		return color.New(color.FgMagenta)
	}
	return color.New(color.Reset)
}

func padRight(s string, length int) string {
	if n := len([]rune(s)); n < length {
		return s + strings.Repeat(" ", length-n)
	}
	return s
}
