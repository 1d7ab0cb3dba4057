package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/model"
)

func (a *app) checkinCmd() *cobra.Command {
	var d model.Detail

	cmd := &cobra.Command{
		Use:     "checkin",
		Aliases: []string{"log", "tap"},
		Short:   "Record a check-in now",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := tr.CheckIn(cmd.Context(), d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = green.Fprintf(out, "Logged %s check-in at %s\n\n",
				tr.Settings().HabitName, e.Time(a.clock.Now().Location()).Format("15:04"))
			printSummary(out, tr.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&d.Trigger, "trigger", "", "what prompted it, e.g. stress, coffee")
	cmd.Flags().IntVar(&d.Mood, "mood", 0, "mood from 1 to 10 (requires --trigger)")
	cmd.Flags().StringVar(&d.Note, "note", "", "free text note (requires --trigger)")
	return cmd
}

func (a *app) recentCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent check-ins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 {
				return fmt.Errorf("-n must be at least 1")
			}
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			printEvents(cmd.OutOrStdout(), tr.Recent(n), a.clock.Now().Location())
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", 10, "how many check-ins to show")
	return cmd
}
