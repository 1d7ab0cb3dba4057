package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/push"
)

func (a *app) vapidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid",
		Short: "Generate a VAPID key pair for the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "TALLY_VAPID_PUBLIC_KEY=%s\n", pub)
			_, _ = fmt.Fprintf(out, "TALLY_VAPID_PRIVATE_KEY=%s\n", priv)
			return nil
		},
	}
}
