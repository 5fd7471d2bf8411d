package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	stmts := Statements(schemaSQL)
	require.Len(t, stmts, 5)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS applications")
	assert.Contains(t, stmts[1], "idx_applications_job_url")
	assert.Contains(t, stmts[3], "CREATE TABLE IF NOT EXISTS status_history")
	assert.Contains(t, stmts[3], "REFERENCES applications (id)")
	assert.NotContains(t, schemaSQL, "CASCADE")

	for _, s := range stmts {
		assert.NotContains(t, s, ";")
	}
}

func TestStatements_SkipsBlank(t *testing.T) {
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, Statements("SELECT 1;\n\n;  SELECT 2;\n"))
	assert.Nil(t, Statements("  \n"))
}
