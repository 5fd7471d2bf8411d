package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/pipeline"
	"github.com/jonathan/apply-engine/internal/scoring"
)

// NewScoreCommand creates the score command.
func NewScoreCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Classify and score postings without tracking or applying",
		Long: `Classifies postings, scores them against the candidate profile and filters
by minimum score. Writes jobs_classified.json, jobs_scored.json and
jobs_processed.json to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	addJobFlags(cmd)
	addProfileFlags(cmd)
	cmd.Flags().Bool("enrich", false, "Fetch pages for postings without content before classifying")

	return cmd
}

func runScore(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	prof, err := loadProfile(ctx, cfg, log)
	if err != nil {
		return err
	}

	components := pipeline.Components{
		Classifier: classify.New(nil),
		Scorer:     scoring.New(prof),
		Printer:    observability.NewPrinter(cmd.OutOrStdout()),
		Logger:     log,
	}
	if cfg.Enrich {
		components.Enricher = newEnricher(log)
	}

	summary, err := pipeline.New(components).Run(ctx, pipeline.RunOptions{
		JobsFile:  cfg.JobsFile,
		OutputDir: cfg.OutputDir,
		MinScore:  *cfg.MinScore,
		Verbose:   true,
	})
	if err != nil {
		return err
	}

	log.Info("scoring complete", zap.Int("loaded", summary.Loaded), zap.Int("kept", summary.Kept))
	return nil
}
