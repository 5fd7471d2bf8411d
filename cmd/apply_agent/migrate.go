package main

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the tracker schema to the configured database",
		Long: `Creates the applications and status_history tables in PostgreSQL when a
database URL is configured, or in the SQLite file otherwise. Safe to rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			trk, err := openTracker(ctx, cfg, log)
			if err != nil {
				return err
			}
			log.Info("schema applied")
			return trk.Close()
		},
	}
}
