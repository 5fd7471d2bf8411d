package main

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	JSONLogs   bool
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "apply_agent",
		Short: "ATS-aware job application engine",
		Long: `apply_agent classifies crawled job postings by applicant tracking system,
scores them against a candidate profile, tracks every kept posting and
submits applications for the lowest-friction providers at a human pace.

Configuration can be loaded from a JSON file using --config. Command-line
flags override config file values; environment variables fill what is left.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.PersistentFlags().BoolVar(&opts.JSONLogs, "json-logs", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL; SQLite is used when empty)")
	cmd.PersistentFlags().String("sqlite", "", "SQLite database file (defaults to APPLY_DB_PATH or data/applications.db)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewDispatchCommand(opts))
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
