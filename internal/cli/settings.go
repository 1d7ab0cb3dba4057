package cli

import (
	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/model"
)

func (a *app) settingsCmd() *cobra.Command {
	var in model.SettingsInput

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change habit, reminder and quit-tracking settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			if in == (model.SettingsInput{}) {
				printSettings(out, tr.Settings(), tr.Progress().QuitDate)
				return nil
			}

			saved, err := tr.SaveSettings(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = green.Fprintln(out, "Settings saved")
			printSettings(out, saved, tr.Progress().QuitDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.HabitName, "habit", "", "habit name")
	cmd.Flags().StringVar(&in.NotifyTitle, "title", "", "reminder notification title")
	cmd.Flags().StringVar(&in.RemindInterval, "interval", "", "reminder interval in minutes (1-1440)")
	cmd.Flags().StringVar(&in.QuitDate, "quit-date", "", "day you quit, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.BaselinePerDay, "baseline", "", "how many a day before quitting")
	cmd.Flags().StringVar(&in.PackPrice, "price", "", "price of one pack")
	cmd.Flags().StringVar(&in.UnitsPerPack, "per-pack", "", "units in one pack")
	cmd.Flags().StringVar(&in.DailyTarget, "target", "", "daily allowance")
	cmd.Flags().StringVar(&in.SavingsTarget, "savings-target", "", "money saved goal")
	return cmd
}
