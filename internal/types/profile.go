//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CandidateProfile is the candidate data used for scoring and form filling.
// Term lists are lower-cased and de-duplicated in first-seen order.
type CandidateProfile struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Summary     string   `json:"summary,omitempty"`
	Skills      []string `json:"skills"`
	Keywords    []string `json:"keywords"`
	TargetRoles []string `json:"target_roles"`

	// Degraded is set when the profile is the built-in fallback.
	Degraded bool `json:"degraded,omitempty"`
}

// Normalize lower-cases and de-duplicates every term list and makes Keywords
// a superset of Skills.
func (c *CandidateProfile) Normalize() {
	c.Skills = NormalizeTerms(c.Skills)
	c.Keywords = NormalizeTerms(append(append([]string{}, c.Keywords...), c.Skills...))
	c.TargetRoles = NormalizeTerms(c.TargetRoles)
}

// FirstName returns the first whitespace-separated token of Name.
func (c *CandidateProfile) FirstName() string {
	parts := strings.Fields(c.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns everything after the first token of Name.
func (c *CandidateProfile) LastName() string {
	parts := strings.Fields(c.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

// NormalizeTerms trims, lower-cases and de-duplicates terms, keeping the
// first occurrence order. Empty terms are dropped.
func NormalizeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
