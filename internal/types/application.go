//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ApplicationStatus is the current state of a tracked application
type ApplicationStatus string

// Application statuses. StatusResponded is only set by external updates.
const (
	StatusPending   ApplicationStatus = "pending"
	StatusSubmitted ApplicationStatus = "submitted"
	StatusFailed    ApplicationStatus = "failed"
	StatusResponded ApplicationStatus = "responded"
)

// ErrApplicationNotFound is returned when a transition targets an unknown application.
var ErrApplicationNotFound = errors.New("application not found")

// ApplicationRecord is a tracked application, unique by URL
type ApplicationRecord struct {
	ID          uuid.UUID         `json:"id"`
	URL         string            `json:"job_url"`
	Title       string            `json:"job_title"`
	Company     string            `json:"company"`
	Location    string            `json:"location"`
	Provider    string            `json:"ats"`
	Tier        Tier              `json:"tier"`
	Score       float64           `json:"match_score"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   *time.Time        `json:"applied_at,omitempty"`
	RespondedAt *time.Time        `json:"response_at,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewApplicationRecord builds a pending record from a classified, scored posting.
func NewApplicationRecord(p *Posting) *ApplicationRecord {
	rec := &ApplicationRecord{
		URL:      p.URL,
		Title:    p.Title,
		Company:  p.Company,
		Location: p.Location,
		Provider: p.Provider(),
		Tier:     p.Tier(),
		Score:    p.ScoreValue(),
		Status:   StatusPending,
	}
	return rec
}

// StatusTransition is an immutable history entry for an application
type StatusTransition struct {
	ID            uuid.UUID         `json:"id"`
	ApplicationID uuid.UUID         `json:"application_id"`
	OldStatus     ApplicationStatus `json:"old_status"`
	NewStatus     ApplicationStatus `json:"new_status"`
	ChangedAt     time.Time         `json:"changed_at"`
	Note          string            `json:"notes,omitempty"`
}

// TransitionRequest is a request to move an application to a new status.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending submitted failed responded"`
	Note   string `json:"note,omitempty" validate:"max=2000"`
}

// Validate validates the TransitionRequest using the validator.
func (r *TransitionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ProviderCount is a provider name with its application count
type ProviderCount struct {
	Provider string `json:"ats"`
	Count    int    `json:"count"`
}

// TrackerStats aggregates tracked applications
type TrackerStats struct {
	Total          int                       `json:"total_applications"`
	ByStatus       map[ApplicationStatus]int `json:"status_counts"`
	ByTier         map[Tier]int              `json:"tier_counts"`
	TopProviders   []ProviderCount           `json:"ats_counts"`
	SubmittedRatio float64                   `json:"success_rate"`
}
