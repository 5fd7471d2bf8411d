package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/apply-engine/internal/types"
)

// NewTrackCommand creates the track command.
func NewTrackCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <job-url> <status>",
		Short: "Record a status change for a tracked application",
		Long: `Moves the application tracked for job-url to status (pending, submitted,
failed or responded) and appends a history entry. Use this to record
responses and applications finished by hand.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().String("note", "", "Note stored with the history entry")

	return cmd
}

func runTrack(cmd *cobra.Command, opts *RootOptions, url, status string) error {
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

	id, ok, err := trk.GetByURL(ctx, url)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrApplicationNotFound, url)
	}

	note, _ := cmd.Flags().GetString("note")
	next := types.ApplicationStatus(strings.ToLower(strings.TrimSpace(status)))
	if err := trk.Transition(ctx, id, next, note); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", url, next)
	return nil
}
