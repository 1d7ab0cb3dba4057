package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/stats"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		asJSON bool
		trend  int
		moods  bool
	)

	cmd := &cobra.Command{
		Use:       "stats [today|month|year|all]",
		Short:     "Show statistics for a period",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"today", "month", "year", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := stats.ScopeToday
			if len(args) == 1 {
				s, err := stats.ParseScope(args[0])
				if err != nil {
					return err
				}
				scope = s
			}

			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			report := tr.Report(scope)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printReport(out, report)

			now := a.clock.Now()
			if trend > 0 {
				_, _ = fmt.Fprintln(out)
				printTitle(out, fmt.Sprintf("Last %d days", trend))
				printTrend(out, stats.DailyTrend(tr.Events(), now, trend))
			}
			if moods {
				_, _ = fmt.Fprintln(out)
				printTitle(out, "Mood")
				printMoods(out, stats.MoodHistogram(stats.Filter(tr.Events(), scope, now)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().IntVar(&trend, "trend", 0, "also show daily counts for the last N days")
	cmd.Flags().BoolVar(&moods, "moods", false, "also show the mood distribution")
	return cmd
}

func (a *app) progressCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show days since quitting, money saved and milestones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			p := tr.Progress()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			printProgress(out, p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print progress as JSON")
	return cmd
}
