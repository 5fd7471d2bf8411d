package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/tracker"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tracker statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().Int("top", tracker.DefaultTopProviders, "Number of providers listed")
	cmd.Flags().Bool("json", false, "Print statistics as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, opts *RootOptions) error {
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
	defer func() { _ = trk.Close() }()

	top, _ := cmd.Flags().GetInt("top")
	stats, err := trk.Stats(ctx, top)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintTrackerStats(stats)
	return nil
}
