// Package types provides type definitions for structured data shared across the application engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Tier is the friction class of an applicant tracking system
type Tier int

// Friction tiers. Lower tiers are easier to automate.
const (
	TierLow    Tier = 1
	TierMedium Tier = 2
	TierHigh   Tier = 3
)

// Automation strategy tags derived from a tier
const (
	StrategyFullAuto   = "full_auto"
	StrategySmartAuto  = "smart_auto"
	StrategySemiManual = "semi_manual"
	StrategyManual     = "manual"
)

// ProviderUnknown is the provider name used when no catalog entry matches
const ProviderUnknown = "unknown"

// Strategy returns the automation strategy tag for the tier.
func (t Tier) Strategy() string {
	switch t {
	case TierLow:
		return StrategyFullAuto
	case TierMedium:
		return StrategySmartAuto
	case TierHigh:
		return StrategySemiManual
	default:
		return StrategyManual
	}
}

// Valid reports whether the tier is one of the three known tiers.
func (t Tier) Valid() bool {
	return t >= TierLow && t <= TierHigh
}

// Classification is the ATS fingerprint result attached to a posting
type Classification struct {
	Provider    string  `json:"ats"`
	Tier        Tier    `json:"tier"`
	SuccessRate float64 `json:"success_rate"`
	Strategy    string  `json:"automation_strategy"`
}

// captureLayouts are the timestamp forms crawlers write for scraped_at.
// Values without an offset are read as UTC.
var captureLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// CaptureTime is the crawl timestamp of a posting. Unparseable values decode
// to the zero time instead of failing the record.
type CaptureTime struct {
	time.Time
}

// ParseCaptureTime parses s in any of the accepted layouts.
func ParseCaptureTime(s string) (CaptureTime, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range captureLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CaptureTime{Time: t}, true
		}
	}
	return CaptureTime{}, false
}

// UnmarshalJSON accepts RFC 3339, naive ISO 8601 timestamps and null.
func (c *CaptureTime) UnmarshalJSON(data []byte) error {
	*c = CaptureTime{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	*c, _ = ParseCaptureTime(s)
	return nil
}

// MarshalJSON writes RFC 3339 with nanoseconds.
func (c CaptureTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Time.UTC().Format(time.RFC3339Nano))
}

// Posting is a job posting as produced by the crawler. Classification and
// Score are filled in by downstream stages.
type Posting struct {
	URL         string    `json:"url" validate:"required,url"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Snippet     string    `json:"snippet,omitempty"`
	Salary      string    `json:"salary,omitempty"`
	CapturedAt  CaptureTime `json:"scraped_at,omitzero"`
	Source      string    `json:"source,omitempty"`

	// Content is raw page HTML used only as a fingerprinting fallback.
	Content string `json:"html,omitempty"`

	Classification *Classification `json:"classification,omitempty"`
	Score          *float64        `json:"match_score,omitempty"`
}

// Validate validates the posting using the validator.
func (p *Posting) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Tier returns the classified tier, or TierHigh when unclassified.
func (p *Posting) Tier() Tier {
	if p.Classification == nil {
		return TierHigh
	}
	return p.Classification.Tier
}

// Provider returns the classified provider, or ProviderUnknown when unclassified.
func (p *Posting) Provider() string {
	if p.Classification == nil || p.Classification.Provider == "" {
		return ProviderUnknown
	}
	return p.Classification.Provider
}

// ScoreValue returns the attached fit score, or 0 when unscored.
func (p *Posting) ScoreValue() float64 {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}
