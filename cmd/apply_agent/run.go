package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/pipeline"
	"github.com/jonathan/apply-engine/internal/scoring"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline end-to-end",
		Long: `Orchestrates one complete run: load -> enrich -> classify and score -> filter -> track -> dispatch -> report.

Intermediate files are written to the output directory. Only tier-1 postings
are dispatched; use --dry-run to count them without opening a browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts)
		},
	}

	addJobFlags(cmd)
	addProfileFlags(cmd)
	addDispatchFlags(cmd)
	cmd.Flags().Bool("enrich", false, "Fetch pages for postings without content before classifying")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *RootOptions) error {
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

	trk, err := openTracker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = trk.Close() }()

	components := pipeline.Components{
		Classifier: classify.New(nil),
		Scorer:     scoring.New(prof),
		Tracker:    trk,
		Dispatcher: newDispatcher(cfg, prof, trk, log),
		Printer:    observability.NewPrinter(cmd.OutOrStdout()),
		Logger:     log,
	}
	if cfg.Enrich {
		components.Enricher = newEnricher(log)
	}

	summary, err := pipeline.New(components).Run(ctx, pipeline.RunOptions{
		JobsFile:        cfg.JobsFile,
		OutputDir:       cfg.OutputDir,
		MinScore:        *cfg.MinScore,
		MaxApplications: *cfg.MaxApplications,
		MarkFailed:      cfg.MarkFailed,
		Verbose:         cfg.Verbose,
		OnProgress: func(e pipeline.ProgressEvent) {
			log.Debug(e.Message, zap.String("step", e.Step))
		},
	})
	if err != nil {
		return err
	}

	log.Info("run complete",
		zap.Int("loaded", summary.Loaded),
		zap.Int("kept", summary.Kept),
		zap.Int("tracked", summary.Tracked))
	return nil
}
