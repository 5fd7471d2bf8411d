package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"jobs_file": "crawl/jobs.json",
		"name": "Test User",
		"min_score": 72.5,
		"max_applications": 5,
		"min_delay": "2s",
		"max_delay": 4,
		"dry_run": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "crawl/jobs.json", cfg.JobsFile)
	assert.Equal(t, "Test User", cfg.Name)
	assert.Equal(t, 72.5, *cfg.MinScore)
	assert.Equal(t, 5, *cfg.MaxApplications)
	assert.Nil(t, cfg.Headless)
	assert.Equal(t, 2*time.Second, cfg.MinDelay.Std())
	assert.Equal(t, 4*time.Second, cfg.MaxDelay.Std())
	assert.True(t, cfg.DryRun)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"cooldown": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"empty", Config{}, ""},
		{"zero min score", Config{MinScore: Float64(0)}, ""},
		{"min score too high", Config{MinScore: Float64(101)}, "min_score"},
		{"negative max applications", Config{MaxApplications: Int(-1)}, "max_applications"},
		{"negative batch size", Config{BatchSize: -3}, "batch_size"},
		{"negative delay", Config{Cooldown: Duration(-time.Second)}, "non-negative"},
		{"inverted delays", Config{MinDelay: Duration(5 * time.Second), MaxDelay: Duration(time.Second)}, "max_delay"},
		{"missing resume", Config{ResumeFile: "/nonexistent/resume.pdf"}, "resume file not found"},
		{"missing token file", Config{ProfileTokenFile: "/nonexistent/token"}, "token file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		JobsFile: "mine.json",
		MinScore: Float64(75),
		DryRun:   true,
	}

	merged := cfg.MergeWithDefaults(Defaults())
	assert.Equal(t, "mine.json", merged.JobsFile)
	assert.Equal(t, 75.0, *merged.MinScore)
	assert.Equal(t, DefaultOutputDir, merged.OutputDir)
	assert.Equal(t, DefaultMaxApplications, *merged.MaxApplications)
	assert.True(t, *merged.Headless)
	assert.Equal(t, 10*time.Second, merged.MinDelay.Std())
	assert.Equal(t, 30*time.Second, merged.Cooldown.Std())
	assert.Equal(t, 10, merged.BatchSize)
	assert.True(t, merged.DryRun)

	// the receiver is not modified
	assert.Empty(t, cfg.OutputDir)
}

func TestMergeWithDefaults_KeepsExplicitZeros(t *testing.T) {
	path := writeConfig(t, `{"min_score": 0, "max_applications": 0, "headless": false}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	merged := cfg.MergeWithDefaults(Defaults())
	assert.Equal(t, 0.0, *merged.MinScore)
	assert.Equal(t, 0, *merged.MaxApplications)
	assert.False(t, *merged.Headless)
	require.NoError(t, merged.Validate())

	cfg, err = LoadConfig(writeConfig(t, `{"dry_run": true}`))
	require.NoError(t, err)
	merged = cfg.MergeWithDefaults(Defaults())
	assert.Equal(t, DefaultMinScore, *merged.MinScore)
	assert.Equal(t, DefaultMaxApplications, *merged.MaxApplications)
	assert.True(t, *merged.Headless)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "postgres://localhost/apply")
	t.Setenv(EnvProfileURL, "http://profile.local/api")
	t.Setenv(EnvSQLitePath, "")

	cfg := &Config{ProfileURL: "http://explicit"}
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://localhost/apply", cfg.DatabaseURL)
	assert.Equal(t, "http://explicit", cfg.ProfileURL)
	assert.Empty(t, cfg.SQLitePath)
}

func TestProfileToken(t *testing.T) {
	t.Setenv(EnvProfileToken, " env-token ")

	cfg := &Config{}
	token, err := cfg.ProfileToken()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0600))
	cfg.ProfileTokenFile = path

	token, err = cfg.ProfileToken()
	require.NoError(t, err)
	assert.Equal(t, "file-token", token)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Config{Cooldown: Duration(90 * time.Second)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cooldown":"1m30s"`)
}

func TestAPIToken(t *testing.T) {
	t.Setenv(EnvAPIToken, "  api-token ")
	assert.Equal(t, "api-token", (&Config{}).APIToken())

	t.Setenv(EnvAPIToken, "")
	assert.Empty(t, (&Config{}).APIToken())
}
