package dispatch

import (
	"fmt"
	"time"

	"github.com/jonathan/apply-engine/internal/types"
)

// Outcome records one dispatch attempt
type Outcome struct {
	URL         string                  `json:"job_url"`
	Title       string                  `json:"job_title"`
	Company     string                  `json:"company"`
	Provider    string                  `json:"ats"`
	Success     bool                    `json:"success"`
	Status      types.ApplicationStatus `json:"status"`
	Error       string                  `json:"error,omitempty"`
	AttemptedAt time.Time               `json:"applied_at"`
	Duration    time.Duration           `json:"duration_ns"`
}

// Result summarizes a dispatch batch
type Result struct {
	Outcomes  []Outcome `json:"outcomes"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`

	// Planned is the number of postings selected for dispatch.
	Planned int  `json:"planned"`
	DryRun  bool `json:"dry_run,omitempty"`
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Success {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// Attempted returns the number of attempts made.
func (r *Result) Attempted() int {
	return r.Succeeded + r.Failed
}

// SuccessRate returns succeeded/attempted, or 0 when nothing was attempted.
func (r *Result) SuccessRate() float64 {
	if r.Attempted() == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Attempted())
}

// Failures returns the failed outcomes in attempt order.
func (r *Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}

// Submitted returns the successful outcomes in attempt order.
func (r *Result) Submitted() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Success {
			out = append(out, o)
		}
	}
	return out
}

// AttemptError wraps a failure inside a single dispatch attempt.
type AttemptError struct {
	URL      string
	Provider string
	Message  string
	Cause    error
}

func (e *AttemptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("attempt %s (%s): %s: %v", e.URL, e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("attempt %s (%s): %s", e.URL, e.Provider, e.Message)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}
