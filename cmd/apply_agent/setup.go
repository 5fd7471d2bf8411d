package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/automation"
	"github.com/jonathan/apply-engine/internal/config"
	"github.com/jonathan/apply-engine/internal/db"
	"github.com/jonathan/apply-engine/internal/db/sqlite"
	"github.com/jonathan/apply-engine/internal/dispatch"
	"github.com/jonathan/apply-engine/internal/fetch"
	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/profile"
	"github.com/jonathan/apply-engine/internal/prompts"
	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("jobs", "j", "", "Crawler output JSON file (default data/jobs_raw.json)")
	cmd.Flags().StringP("output", "o", "", "Directory for intermediate JSON files (default data)")
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile-url", "", "Candidate profile service URL (defaults to PROFILE_URL)")
	cmd.Flags().String("profile-token-file", "", "File holding a bearer token for the profile service")
	cmd.Flags().StringP("name", "n", "", "Candidate name")
	cmd.Flags().String("email", "", "Candidate email")
	cmd.Flags().String("phone", "", "Candidate phone")
	cmd.Flags().Float64("min-score", 0, "Minimum fit score kept for tracking (default 60)")
}

func addDispatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("resume", "", "Resume file attached to upload fields")
	cmd.Flags().String("cover-letter", "", "Cover letter template variant")
	cmd.Flags().Int("max", 0, "Maximum tier-1 applications per run; 0 dispatches none (default 10)")
	cmd.Flags().Duration("min-delay", 0, "Minimum pause between applications (default 10s)")
	cmd.Flags().Duration("max-delay", 0, "Maximum pause between applications (default 20s)")
	cmd.Flags().Duration("cooldown", 0, "Extra pause after each batch (default 30s)")
	cmd.Flags().Int("batch-size", 0, "Applications per batch before a cooldown (default 10)")
	cmd.Flags().Bool("dry-run", false, "Count applications without submitting")
	cmd.Flags().Bool("mark-failed", false, "Record failed attempts in the tracker")
	cmd.Flags().Bool("headless", true, "Run the browser headless")
}

// applyFlags copies explicitly set flags over cfg. Flags a command does not
// declare are never Changed and are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()

	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}
	duration := func(name string, dst *config.Duration) {
		if fs.Changed(name) {
			d, _ := fs.GetDuration(name)
			*dst = config.Duration(d)
		}
	}

	str("jobs", &cfg.JobsFile)
	str("output", &cfg.OutputDir)
	str("resume", &cfg.ResumeFile)
	str("profile-url", &cfg.ProfileURL)
	str("profile-token-file", &cfg.ProfileTokenFile)
	str("name", &cfg.Name)
	str("email", &cfg.Email)
	str("phone", &cfg.Phone)
	str("cover-letter", &cfg.CoverLetter)
	str("db-url", &cfg.DatabaseURL)
	str("sqlite", &cfg.SQLitePath)
	str("listen", &cfg.ListenAddr)

	if fs.Changed("min-score") {
		v, _ := fs.GetFloat64("min-score")
		cfg.MinScore = config.Float64(v)
	}
	if fs.Changed("max") {
		v, _ := fs.GetInt("max")
		cfg.MaxApplications = config.Int(v)
	}
	if fs.Changed("headless") {
		v, _ := fs.GetBool("headless")
		cfg.Headless = config.Bool(v)
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize, _ = fs.GetInt("batch-size")
	}
	duration("min-delay", &cfg.MinDelay)
	duration("max-delay", &cfg.MaxDelay)
	duration("cooldown", &cfg.Cooldown)

	boolean("dry-run", &cfg.DryRun)
	boolean("mark-failed", &cfg.MarkFailed)
	boolean("enrich", &cfg.Enrich)
	boolean("verbose", &cfg.Verbose)
	boolean("json-logs", &cfg.JSONLogs)
}

// loadConfig resolves the effective configuration: config file, then flags,
// then environment, then defaults.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (config.Config, error) {
	var cfg config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	applyFlags(cmd, &cfg)
	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := checkCoverLetter(cfg.CoverLetter); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// checkCoverLetter rejects variants missing from the embedded templates.
func checkCoverLetter(variant string) error {
	variants, err := prompts.List(prompts.CoverLetterFile)
	if err != nil {
		return err
	}
	if !slices.Contains(variants, variant) {
		return fmt.Errorf("config error: unknown cover letter variant %q (available: %s)", variant, strings.Join(variants, ", "))
	}
	return nil
}

// setup loads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command, opts *RootOptions) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.JSONLogs, cfg.Verbose)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if opts.ConfigPath != "" {
		log.Debug("loaded config", zap.String("path", opts.ConfigPath))
	}
	return cfg, log, nil
}

// openTracker opens PostgreSQL when a database URL is configured and SQLite
// otherwise, then applies the schema.
func openTracker(ctx context.Context, cfg config.Config, log *zap.Logger) (*tracker.Tracker, error) {
	var store tracker.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = database
		log.Debug("using PostgreSQL tracker store")
	} else {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = st
		log.Debug("using SQLite tracker store", zap.String("path", cfg.SQLitePath))
	}

	t := tracker.New(store, log)
	if err := t.Migrate(ctx); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

// loadProfile fetches the candidate profile, falling back to the built-in one.
func loadProfile(ctx context.Context, cfg config.Config, log *zap.Logger) (*types.CandidateProfile, error) {
	token, err := cfg.ProfileToken()
	if err != nil {
		return nil, err
	}
	client := profile.NewClient(profile.Config{
		URL:   cfg.ProfileURL,
		Token: token,
		Name:  cfg.Name,
		Email: cfg.Email,
		Phone: cfg.Phone,
	}, log)
	return client.Load(ctx), nil
}

func newDispatcher(cfg config.Config, prof *types.CandidateProfile, rec dispatch.Recorder, log *zap.Logger) *dispatch.Dispatcher {
	chrome := automation.DefaultChromeConfig()
	chrome.Headless = *cfg.Headless

	applicant := &dispatch.Applicant{
		Profile:            prof,
		ResumePath:         cfg.ResumeFile,
		CoverLetterVariant: cfg.CoverLetter,
	}
	pacing := dispatch.PacingConfig{
		MinDelay:  cfg.MinDelay.Std(),
		MaxDelay:  cfg.MaxDelay.Std(),
		Cooldown:  cfg.Cooldown.Std(),
		BatchSize: cfg.BatchSize,
	}
	return dispatch.New(dispatch.Config{Pacing: pacing, DryRun: cfg.DryRun},
		automation.NewChromeLauncher(chrome, log), dispatch.DefaultTable(), rec, applicant, log)
}

func newEnricher(log *zap.Logger) *fetch.Enricher {
	return fetch.NewEnricher(fetch.NewFetcher(fetch.DefaultOptions()), &fetch.BrowserRenderer{Logger: log}, 0, log)
}
