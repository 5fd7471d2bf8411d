package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

// NewPendingCommand creates the pending command.
func NewPendingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending applications by score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPending(cmd, opts)
		},
	}

	cmd.Flags().Int("tier", 0, "Only list this tier (1-3); 0 lists every tier")
	cmd.Flags().Int("limit", tracker.DefaultPendingLimit, "Maximum applications listed")
	cmd.Flags().Bool("json", false, "Print applications as JSON")

	return cmd
}

func runPending(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()

	var tier *types.Tier
	if n, _ := cmd.Flags().GetInt("tier"); n != 0 {
		t := types.Tier(n)
		if !t.Valid() {
			return fmt.Errorf("invalid tier %d: must be 1, 2 or 3", n)
		}
		tier = &t
	}

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

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := trk.ListPending(ctx, tier, limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if recs == nil {
			recs = []types.ApplicationRecord{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPending(recs)
	return nil
}
