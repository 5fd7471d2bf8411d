// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/apply-engine/internal/schemas"
)

// Environment variables consulted when a setting is absent.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvProfileURL   = "PROFILE_URL"
	EnvProfileToken = "PROFILE_TOKEN"
	EnvSQLitePath   = "APPLY_DB_PATH"
	EnvAPIToken     = "APPLY_API_TOKEN"
)

// Defaults
const (
	DefaultJobsFile        = "data/jobs_raw.json"
	DefaultOutputDir       = "data"
	DefaultProfileURL      = "http://localhost:8000/api/resume"
	DefaultSQLitePath      = "data/applications.db"
	DefaultMinScore        = 60.0
	DefaultMaxApplications = 10
	DefaultCoverLetter     = "default"
	DefaultListenAddr      = ":8080"
)

// Duration is a time.Duration read from a JSON string such as "15s".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	JobsFile   string `json:"jobs_file,omitempty"`   // Crawler output to process
	OutputDir  string `json:"output_dir,omitempty"`  // Directory for intermediate JSON files
	ResumeFile string `json:"resume_file,omitempty"` // Resume attached to upload fields

	// Candidate profile
	ProfileURL       string `json:"profile_url,omitempty"`        // Profile service endpoint
	ProfileTokenFile string `json:"profile_token_file,omitempty"` // File holding a bearer token for the profile service
	Name             string `json:"name,omitempty"`               // Candidate name
	Email            string `json:"email,omitempty"`              // Candidate email
	Phone            string `json:"phone,omitempty"`              // Candidate phone
	CoverLetter      string `json:"cover_letter,omitempty"`       // Cover letter template variant

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // SQLite file used when no database URL is set

	// Limits. Nil means unset; zero is a valid value.
	MinScore        *float64 `json:"min_score,omitempty"`        // Minimum fit score kept for tracking
	MaxApplications *int     `json:"max_applications,omitempty"` // Tier-1 applications per run; 0 dispatches nothing

	// Pacing
	MinDelay  Duration `json:"min_delay,omitempty"`
	MaxDelay  Duration `json:"max_delay,omitempty"`
	Cooldown  Duration `json:"cooldown,omitempty"`
	BatchSize int      `json:"batch_size,omitempty"`

	// Behavior
	DryRun     bool   `json:"dry_run,omitempty"`     // Count applications without submitting
	MarkFailed bool   `json:"mark_failed,omitempty"` // Record failed attempts in the tracker
	Enrich     bool   `json:"enrich,omitempty"`      // Fetch pages for postings without content
	Headless   *bool  `json:"headless,omitempty"`    // Run the browser headless; nil means true
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information
	JSONLogs   bool   `json:"json_logs,omitempty"`   // Emit JSON logs
	ListenAddr string `json:"listen_addr,omitempty"` // API listen address
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MinScore != nil && (*c.MinScore < 0 || *c.MinScore > 100) {
		return fmt.Errorf("config error: 'min_score' must be between 0 and 100")
	}
	if c.MaxApplications != nil && *c.MaxApplications < 0 {
		return fmt.Errorf("config error: 'max_applications' must be non-negative")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("config error: 'batch_size' must be non-negative")
	}
	if c.MinDelay < 0 || c.MaxDelay < 0 || c.Cooldown < 0 {
		return fmt.Errorf("config error: delays must be non-negative")
	}
	if c.MaxDelay != 0 && c.MaxDelay < c.MinDelay {
		return fmt.Errorf("config error: 'max_delay' must not be less than 'min_delay'")
	}

	// Validate file paths exist (if specified)
	if c.ResumeFile != "" {
		if _, err := os.Stat(c.ResumeFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.ResumeFile)
		}
	}
	if c.ProfileTokenFile != "" {
		if _, err := os.Stat(c.ProfileTokenFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile token file not found: %s", c.ProfileTokenFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.JobsFile, defaults.JobsFile)
	mergeString(&result.OutputDir, defaults.OutputDir)
	mergeString(&result.ResumeFile, defaults.ResumeFile)
	mergeString(&result.ProfileURL, defaults.ProfileURL)
	mergeString(&result.ProfileTokenFile, defaults.ProfileTokenFile)
	mergeString(&result.Name, defaults.Name)
	mergeString(&result.Email, defaults.Email)
	mergeString(&result.Phone, defaults.Phone)
	mergeString(&result.CoverLetter, defaults.CoverLetter)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.SQLitePath, defaults.SQLitePath)
	mergeString(&result.ListenAddr, defaults.ListenAddr)

	// Pointer fields: use default only when unset
	if result.MinScore == nil {
		result.MinScore = defaults.MinScore
	}
	if result.MaxApplications == nil {
		result.MaxApplications = defaults.MaxApplications
	}
	if result.Headless == nil {
		result.Headless = defaults.Headless
	}

	// Numeric fields: use default if zero
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.MinDelay == 0 {
		result.MinDelay = defaults.MinDelay
	}
	if result.MaxDelay == 0 {
		result.MaxDelay = defaults.MaxDelay
	}
	if result.Cooldown == 0 {
		result.Cooldown = defaults.Cooldown
	}

	// Plain bool fields default to false and are not merged

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// ApplyEnv fills storage and profile settings from the environment when unset.
func (c *Config) ApplyEnv() {
	mergeString(&c.DatabaseURL, os.Getenv(EnvDatabaseURL))
	mergeString(&c.ProfileURL, os.Getenv(EnvProfileURL))
	mergeString(&c.SQLitePath, os.Getenv(EnvSQLitePath))
}

// ProfileToken returns the bearer token for the profile service. The token
// file wins over the PROFILE_TOKEN environment variable.
func (c *Config) ProfileToken() (string, error) {
	if c.ProfileTokenFile == "" {
		return strings.TrimSpace(os.Getenv(EnvProfileToken)), nil
	}
	data, err := os.ReadFile(c.ProfileTokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read profile token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// APIToken returns the bearer token the API requires for status updates.
// Empty means writes are unauthenticated.
func (c *Config) APIToken() string {
	return strings.TrimSpace(os.Getenv(EnvAPIToken))
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		JobsFile:        DefaultJobsFile,
		OutputDir:       DefaultOutputDir,
		ProfileURL:      DefaultProfileURL,
		SQLitePath:      DefaultSQLitePath,
		CoverLetter:     DefaultCoverLetter,
		ListenAddr:      DefaultListenAddr,
		MinScore:        Float64(DefaultMinScore),
		MaxApplications: Int(DefaultMaxApplications),
		Headless:        Bool(true),
		MinDelay:        Duration(10 * time.Second),
		MaxDelay:        Duration(20 * time.Second),
		Cooldown:        Duration(30 * time.Second),
		BatchSize:       10,
	}
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
