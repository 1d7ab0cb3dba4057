// Package cli implements the tally command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dukerupert/tally/internal/blob"
	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/config"
	"github.com/dukerupert/tally/internal/logging"
	"github.com/dukerupert/tally/internal/store"
	"github.com/dukerupert/tally/internal/tracker"
)

// app carries what every command needs once configuration is loaded.
type app struct {
	v      *viper.Viper
	clock  clock.Clock
	cfg    config.Config
	logger *slog.Logger
}

// Execute runs the command tree against the wall clock.
func Execute() error {
	return newRootCmd(clock.New()).Execute()
}

func newRootCmd(clk clock.Clock) *cobra.Command {
	a := &app{v: config.New(), clock: clk}

	root := &cobra.Command{
		Use:   "tally",
		Short: "Log habit check-ins, see the numbers, get reminded",
		Long: `tally records a timestamped check-in each time you run "tally checkin",
keeps the log on disk, and reports counts, averages and distributions over it.
"tally serve" runs the push relay that wakes subscribed browsers with reminders.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if used := config.ConfigFileUsed(a.v); used != "" {
				a.logger.Debug("config file loaded", "path", used)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("data-dir", "", "directory holding tally's data (default ~/.tally)")
	flags.String("store", "", "blob backend: disk, bolt or sqlite")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "text or json")
	flags.String("relay-url", "", "push relay base URL (default http://localhost:3000)")
	for key, name := range map[string]string{
		"data_dir":   "data-dir",
		"store":      "store",
		"log_level":  "log-level",
		"log_format": "log-format",
		"relay_url":  "relay-url",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		a.checkinCmd(),
		a.statsCmd(),
		a.progressCmd(),
		a.recentCmd(),
		a.settingsCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.clearCmd(),
		a.remindCmd(),
		a.serveCmd(),
		a.vapidCmd(),
		a.subscribeCmd(),
		a.unsubscribeCmd(),
		a.pushCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) openBlobs() (blob.Store, error) {
	blobs, err := blob.Open(a.cfg.Store, a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store in %s: %w", a.cfg.Store, a.cfg.DataDir, err)
	}
	return blobs, nil
}

// openTracker loads the local log. The returned func releases it.
func (a *app) openTracker(ctx context.Context) (*tracker.Tracker, func(), error) {
	blobs, err := a.openBlobs()
	if err != nil {
		return nil, nil, err
	}
	local := store.NewLocal(blobs, a.logger.With("component", "store"))
	tr := tracker.New(ctx, local, a.clock, a.logger.With("component", "tracker"))

	closeFn := func() {
		tr.Close()
		if err := blobs.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
	return tr, closeFn, nil
}
