package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/apply-engine/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tracker REST API server",
		Long: `Start an HTTP server exposing tracker statistics, pending applications,
history and status updates. Status updates require the APPLY_API_TOKEN
bearer token when it is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on (default :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
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

	srv := server.New(server.Config{Addr: cfg.ListenAddr, APIToken: cfg.APIToken()}, trk, log)
	return srv.Start(ctx)
}
