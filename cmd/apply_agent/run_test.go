package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/apply-engine/internal/pipeline"
	"github.com/jonathan/apply-engine/internal/types"
)

func TestRunCommand_DryRunThenTrack(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	jobs := writeJobs(t, dir)
	outDir := filepath.Join(dir, "out")
	dbPath := filepath.Join(dir, "apps.db")

	_, err := execute(t, "run",
		"--jobs", jobs,
		"--output", outDir,
		"--sqlite", dbPath,
		"--profile-url", unavailableProfile(t),
		"--min-score", "10",
		"--dry-run")
	require.NoError(t, err)

	for _, name := range []string{pipeline.FileClassified, pipeline.FileScored, pipeline.FileProcessed} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	assert.NoFileExists(t, filepath.Join(outDir, pipeline.FileApplications))

	out, err := execute(t, "stats", "--sqlite", dbPath, "--json")
	require.NoError(t, err)
	var stats types.TrackerStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[types.StatusPending])

	out, err = execute(t, "track", "https://acme.applytojob.com/apply/1", "Submitted", "--note", "applied by hand", "--sqlite", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "-> submitted")

	out, err = execute(t, "stats", "--sqlite", dbPath, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.InDelta(t, 0.5, stats.SubmittedRatio, 1e-9)
}

func TestRunCommand_ZeroMaxDispatchesNothing(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	jobs := writeJobs(t, dir)

	out, err := execute(t, "run",
		"--jobs", jobs,
		"--output", filepath.Join(dir, "out"),
		"--sqlite", filepath.Join(dir, "apps.db"),
		"--profile-url", unavailableProfile(t),
		"--min-score", "10",
		"--max", "0",
		"--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would apply to 0 tier-1 postings")
}
