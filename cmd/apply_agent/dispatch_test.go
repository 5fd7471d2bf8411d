package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchCommand_DryRun(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	jobs := writeJobs(t, dir)
	outDir := filepath.Join(dir, "out")

	_, err := execute(t, "score", "--jobs", jobs, "--output", outDir, "--profile-url", unavailableProfile(t), "--min-score", "10")
	require.NoError(t, err)

	out, err := execute(t, "dispatch",
		"--output", outDir,
		"--sqlite", filepath.Join(dir, "apps.db"),
		"--profile-url", unavailableProfile(t),
		"--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would apply to 1 tier-1 postings")

	out, err = execute(t, "dispatch",
		"--output", outDir,
		"--sqlite", filepath.Join(dir, "apps.db"),
		"--profile-url", unavailableProfile(t),
		"--max", "0",
		"--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would apply to 0 tier-1 postings")
}

func TestDispatchCommand_MissingInput(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	_, err := execute(t, "dispatch", "--output", dir, "--sqlite", filepath.Join(dir, "apps.db"), "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read jobs file")
}
