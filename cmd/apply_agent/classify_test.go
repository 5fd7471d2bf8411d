package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/apply-engine/internal/pipeline"
)

func TestClassifyCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	jobs := writeJobs(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "classify", "--jobs", jobs, "--output", outDir, "--sqlite", filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "jazzhr")

	postings, _, err := pipeline.LoadPostings(filepath.Join(outDir, pipeline.FileClassified), nil)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	for _, p := range postings {
		require.NotNil(t, p.Classification, p.URL)
	}
}

func TestClassifyCommand_MissingJobsFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	_, err := execute(t, "classify", "--jobs", filepath.Join(dir, "missing.json"), "--output", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read jobs file")
}
