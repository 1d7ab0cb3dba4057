package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/server"
	"github.com/dukerupert/tally/internal/store"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the push relay HTTP server",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	cmd.Flags().String("port", "", "listen port (default 3000)")
	cmd.Flags().Int("remind-interval", 0, "broadcast a reminder every N minutes (0 disables)")
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("remind_interval", cmd.Flags().Lookup("remind-interval"))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := a.openBlobs()
	if err != nil {
		return err
	}
	defer blobs.Close()

	registry := store.NewSubscriptionRegistry(blobs, a.logger.With("component", "registry"))
	subs := registry.Load(ctx)

	pushCfg := push.Config{
		VAPIDPublicKey:  a.cfg.VAPID.PublicKey,
		VAPIDPrivateKey: a.cfg.VAPID.PrivateKey,
		Subject:         a.cfg.VAPID.Subject,
	}
	if !pushCfg.Enabled() {
		a.logger.Warn("VAPID keys not configured, deliveries will fail; run `tally vapid` to generate a pair")
	}

	srv := server.New(server.Config{
		VAPIDPublicKey: pushCfg.VAPIDPublicKey,
		RemindInterval: time.Duration(a.cfg.RemindInterval) * time.Minute,
	}, registry, push.NewService(pushCfg), a.clock, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start relay: %w", err)
	}
	defer srv.Stop()

	httpServer := &http.Server{
		Addr:              a.cfg.ListenAddr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("relay listening",
			"addr", httpServer.Addr,
			"data_dir", a.cfg.DataDir,
			"store", a.cfg.Store,
			"subscriptions", len(subs),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
