package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/apply-engine/internal/config"
	"github.com/jonathan/apply-engine/internal/types"
)

// isolateEnv clears the variables that would point commands at real services.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvDatabaseURL, config.EnvSQLitePath, config.EnvProfileURL, config.EnvProfileToken, config.EnvAPIToken} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// parsedCommand returns a fresh subcommand with args parsed, ready for loadConfig.
func parsedCommand(t *testing.T, name string, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := NewRootCommand().Find([]string{name})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// unavailableProfile serves 503 so commands fall back to the built-in profile.
func unavailableProfile(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func writeJobs(t *testing.T, dir string) string {
	t.Helper()
	postings := []types.Posting{
		{
			URL:         "https://acme.applytojob.com/apply/1",
			Title:       "Senior Data Engineer",
			Company:     "Acme Data",
			Location:    "Remote",
			Salary:      "$150,000",
			Description: "python sql aws airflow dbt etl data pipeline",
		},
		{
			URL:         "https://boards.greenhouse.io/acme/jobs/2",
			Title:       "Data Engineer",
			Company:     "Acme Cloud",
			Location:    "Remote",
			Description: "python sql spark",
		},
		{URL: "not a url", Title: "Broken"},
	}
	data, err := json.Marshal(postings)
	require.NoError(t, err)
	path := filepath.Join(dir, "jobs_raw.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
