package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/store"
)

func newStatsCommand(rt *runtime) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workout count and average duration for a month",
		Long: `Show how many workouts were finished in a month and their average length.
Only finished workouts with an end time count towards the average.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = time.Now().Format("2006-01")
			}
			if _, err := time.Parse("2006-01", month); err != nil {
				return fmt.Errorf("invalid month %q, want YYYY-MM", month)
			}
			s, err := rt.db()
			if err != nil {
				return err
			}
			summaries, err := s.MonthlySummaries([]string{month})
			if err != nil {
				return err
			}
			printSummary(cmd, summaries[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	return cmd
}

func printSummary(cmd *cobra.Command, m store.MonthSummary) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	fmt.Fprintln(out, bold.Sprint(m.Month))
	fmt.Fprintln(out, strings.Repeat("─", 24))
	fmt.Fprintf(out, "%-16s %d\n", "Workouts", m.Count)
	avg := "—"
	if m.Count > 0 {
		avg = fmt.Sprintf("%.0f min", m.AvgDuration)
	}
	fmt.Fprintf(out, "%-16s %s\n", "Avg duration", avg)
}
