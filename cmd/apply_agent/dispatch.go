package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/pipeline"
)

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Apply to tier-1 postings from a processed postings file",
		Long: `Reads postings already filtered by the score command (jobs_processed.json by
default) and applies to tier-1 postings in order, pausing between attempts.
Every submitted application is recorded in the tracker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDispatch(cmd, opts)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Processed postings file (default <output>/jobs_processed.json)")
	cmd.Flags().StringP("output", "o", "", "Directory for the outcomes file (default data)")
	addProfileFlags(cmd)
	addDispatchFlags(cmd)

	return cmd
}

func runDispatch(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		input = filepath.Join(cfg.OutputDir, pipeline.FileProcessed)
	}
	postings, _, err := pipeline.LoadPostings(input, log)
	if err != nil {
		return err
	}

	// hand-edited files may carry postings that were never classified
	classifier := classify.New(nil)
	for i := range postings {
		if postings[i].Classification == nil {
			c := classifier.Classify(postings[i])
			postings[i].Classification = &c
		}
	}

	prof, err := loadProfile(ctx, cfg, log)
	if err != nil {
		return err
	}
	trk, err := openTracker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = trk.Close() }()

	runner := pipeline.New(pipeline.Components{
		Tracker:    trk,
		Dispatcher: newDispatcher(cfg, prof, trk, log),
		Printer:    observability.NewPrinter(cmd.OutOrStdout()),
		Logger:     log,
	})
	result, err := runner.Dispatch(ctx, postings, pipeline.RunOptions{
		OutputDir:       cfg.OutputDir,
		MaxApplications: *cfg.MaxApplications,
		MarkFailed:      cfg.MarkFailed,
	})
	if err != nil {
		return err
	}

	log.Info("dispatch finished",
		zap.Int("planned", result.Planned),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	return nil
}
