package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/relay"
)

func (a *app) subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <subscription.json>",
		Short: "Register a browser push subscription with the relay",
		Long: `subscribe reads a PushSubscription as serialized by a browser
({"endpoint": ..., "keys": {"p256dh": ..., "auth": ...}}) and registers it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read subscription: %w", err)
			}
			var sub model.Subscription
			if err := json.Unmarshal(data, &sub); err != nil {
				return fmt.Errorf("parse subscription: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := relay.New(a.cfg.RelayURL).Subscribe(ctx, sub); err != nil {
				return err
			}
			_, _ = green.Fprintf(cmd.OutOrStdout(), "Subscribed %s\n", sub.Endpoint)
			return nil
		},
	}
}

func (a *app) unsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <endpoint>",
		Short: "Remove a push subscription from the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := relay.New(a.cfg.RelayURL).Unsubscribe(ctx, args[0]); err != nil {
				return err
			}
			_, _ = green.Fprintf(cmd.OutOrStdout(), "Unsubscribed %s\n", args[0])
			return nil
		},
	}
}
