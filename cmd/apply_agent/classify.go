package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/pipeline"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify postings by ATS provider and friction tier",
		Long: `Fingerprints every posting's application system from its URL, falling back
to page content, and writes jobs_classified.json to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd, opts)
		},
	}

	addJobFlags(cmd)
	cmd.Flags().String("catalog", "", "Provider catalog YAML overriding the built-in one")

	return cmd
}

func runClassify(cmd *cobra.Command, opts *RootOptions) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var catalog *classify.Catalog
	if path, _ := cmd.Flags().GetString("catalog"); path != "" {
		catalog, err = classify.LoadCatalog(path)
		if err != nil {
			return err
		}
	}
	classifier := classify.New(catalog)

	postings, skipped, err := pipeline.LoadPostings(cfg.JobsFile, log)
	if err != nil {
		return err
	}
	classifier.ClassifyAll(postings)

	if err := pipeline.WriteJSON(cfg.OutputDir, pipeline.FileClassified, postings); err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintDistribution(classify.Distribute(postings), len(postings))
	if cfg.Verbose {
		printer.PrintTierStats(classifier.TierStats())
	}

	log.Info("classification complete",
		zap.Int("postings", len(postings)),
		zap.Int("skipped", skipped),
		zap.String("output", filepath.Join(cfg.OutputDir, pipeline.FileClassified)))
	return nil
}
