package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "nested", "apps.db")

	_, err := execute(t, "migrate", "--sqlite", dbPath)
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	// rerunning is a no-op
	_, err = execute(t, "migrate", "--sqlite", dbPath)
	require.NoError(t, err)
}
