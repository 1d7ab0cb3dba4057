package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/relay"
)

func (a *app) remindCmd() *cobra.Command {
	var forward bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder loop in the foreground",
		Long: `remind prints a reminder every configured interval until interrupted.
With --relay each reminder is also sent to every browser subscribed to the relay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tr, closeFn, err := a.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var client *relay.Client
			if forward {
				client = relay.New(a.cfg.RelayURL)
			}

			out := cmd.OutOrStdout()
			err = tr.StartReminders(func(p push.Payload, at time.Time) {
				_, _ = bold.Fprintf(out, "[%s] %s: ", at.Format("15:04"), p.Title)
				_, _ = fmt.Fprintln(out, p.Body)
				if client == nil {
					return
				}
				if _, err := client.SendPush(ctx, p.Body); err != nil {
					a.logger.Warn("forward reminder to relay", "error", err)
				}
			})
			if err != nil {
				return err
			}

			_, _ = faint.Fprintf(out, "Reminding every %s. Ctrl-C to stop.\n", tr.ReminderInterval())
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&forward, "relay", false, "also broadcast each reminder through the relay at relay_url")
	return cmd
}

func (a *app) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [message]",
		Short: "Ask the relay to broadcast a push notification now",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := ""
			if len(args) == 1 {
				message = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			res, err := relay.New(a.cfg.RelayURL).SendPush(ctx, message)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%q sent: %d delivered, %d pruned, %d failed\n",
				res.Message, res.Delivered, res.Pruned, res.Failed)
			return nil
		},
	}
}
