package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/tally/internal/backup"
)

func (a *app) uploader() (*backup.Uploader, error) {
	s := a.cfg.S3
	return backup.NewUploader(backup.S3Config{
		Endpoint:   s.Endpoint,
		Bucket:     s.Bucket,
		Region:     s.Region,
		AccessKey:  s.AccessKey,
		SecretKey:  s.SecretKey,
		Prefix:     s.Prefix,
		Passphrase: s.Passphrase,
	}, a.logger.With("component", "backup"))
}

func (a *app) exportCmd() *cobra.Command {
	var (
		output string
		toS3   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of all check-ins and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			data, err := tr.ExportJSON()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if toS3 {
				up, err := a.uploader()
				if err != nil {
					return err
				}
				b, err := up.Upload(cmd.Context(), data)
				if err != nil {
					return err
				}
				_, _ = green.Fprintf(out, "Uploaded s3://%s/%s (%d bytes)\n", b.Bucket, b.Key, b.SizeBytes)
				return nil
			}

			if output == "" || output == "-" {
				_, err := fmt.Fprintln(out, string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = green.Fprintf(out, "Exported %d check-ins to %s\n", len(tr.Events()), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload to the configured S3 bucket instead")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var fromS3 bool

	cmd := &cobra.Command{
		Use:   "import <file | s3-key>",
		Short: "Replace all check-ins and settings with an export snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if fromS3 {
				up, uerr := a.uploader()
				if uerr != nil {
					return uerr
				}
				data, err = up.Download(cmd.Context(), args[0])
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := tr.Import(cmd.Context(), data); err != nil {
				return err
			}
			_, _ = green.Fprintf(cmd.OutOrStdout(), "Imported %d check-ins\n", len(tr.Events()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromS3, "s3", false, "treat the argument as a key in the configured S3 bucket")
	return cmd
}

var errNotConfirmed = errors.New("refusing to clear without --yes")

func (a *app) clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every check-in and restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			tr, closeFn, err := a.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := tr.Clear(cmd.Context()); err != nil {
				return err
			}
			_, _ = green.Fprintln(cmd.OutOrStdout(), "All data cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")
	return cmd
}
