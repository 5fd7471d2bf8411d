// Package profile fetches the candidate profile from the profile service and
// falls back to a built-in profile when the service is unavailable.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/types"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single profile request.
const DefaultTimeout = 10 * time.Second

// FetchError represents a failure retrieving or decoding the profile
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Config configures the profile client.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration

	// Contact details used when the service omits them or is unavailable.
	Name  string
	Email string
	Phone string
}

// Client reads the candidate profile from the profile service
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a profile client. A nil logger disables logging.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.OrNop(log),
	}
}

// payload mirrors the profile service response. Category values that do not
// have the expected shape are skipped.
type payload struct {
	Name        string                     `json:"name"`
	Email       string                     `json:"email"`
	Phone       string                     `json:"phone"`
	Summary     json.RawMessage            `json:"summary"`
	Skills      map[string]json.RawMessage `json:"skills"`
	Keywords    map[string]json.RawMessage `json:"keywords"`
	TargetRoles map[string]json.RawMessage `json:"target_roles"`
}

// Fetch retrieves and normalizes the profile.
func (c *Client) Fetch(ctx context.Context) (*types.CandidateProfile, error) {
	if c.cfg.URL == "" {
		return nil, &FetchError{URL: c.cfg.URL, Message: "profile URL is not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: c.cfg.URL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: c.cfg.URL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: c.cfg.URL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{URL: c.cfg.URL, Message: "failed to decode profile", Cause: err}
	}

	profile := fromPayload(&body)
	if len(profile.Skills) == 0 && len(profile.TargetRoles) == 0 {
		return nil, &FetchError{URL: c.cfg.URL, Message: "profile has no skills or target roles"}
	}
	c.applyContact(profile)
	return profile, nil
}

// Load returns the service profile, or the fallback profile when it cannot
// be fetched. It never fails.
func (c *Client) Load(ctx context.Context) *types.CandidateProfile {
	profile, err := c.Fetch(ctx)
	if err != nil {
		c.logger.Warn("profile service unavailable, using fallback profile",
			zap.String("profile_url", c.cfg.URL),
			zap.Error(err),
		)
		fallback := Fallback()
		c.applyContact(fallback)
		return fallback
	}

	c.logger.Info("profile loaded",
		zap.String("name", profile.Name),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("keywords", len(profile.Keywords)),
		zap.Int("target_roles", len(profile.TargetRoles)),
	)
	return profile
}

func (c *Client) applyContact(p *types.CandidateProfile) {
	if p.Name == "" {
		p.Name = c.cfg.Name
	}
	if p.Email == "" {
		p.Email = c.cfg.Email
	}
	if p.Phone == "" {
		p.Phone = c.cfg.Phone
	}
}

func fromPayload(body *payload) *types.CandidateProfile {
	p := &types.CandidateProfile{
		Name:    strings.TrimSpace(body.Name),
		Email:   strings.TrimSpace(body.Email),
		Phone:   strings.TrimSpace(body.Phone),
		Summary: decodeSummary(body.Summary),
	}

	for _, category := range sortedKeys(body.Skills) {
		var levels map[string]json.RawMessage
		if err := json.Unmarshal(body.Skills[category], &levels); err != nil {
			continue
		}
		for _, skill := range sortedKeys(levels) {
			p.Skills = append(p.Skills, skillForms(skill)...)
		}
	}
	p.Keywords = stringLists(body.Keywords)
	p.TargetRoles = stringLists(body.TargetRoles)

	p.Normalize()
	return p
}

// skillForms returns the skill as written plus underscore and hyphen variants.
func skillForms(skill string) []string {
	return []string{
		skill,
		strings.ReplaceAll(skill, "_", " "),
		strings.ReplaceAll(skill, "-", " "),
	}
}

func stringLists(categories map[string]json.RawMessage) []string {
	var out []string
	for _, category := range sortedKeys(categories) {
		var list []string
		if err := json.Unmarshal(categories[category], &list); err != nil {
			continue
		}
		out = append(out, list...)
	}
	return out
}

// decodeSummary accepts either a plain string or an object with a tech_first variant.
func decodeSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var variants map[string]string
	if err := json.Unmarshal(raw, &variants); err == nil {
		return strings.TrimSpace(variants["tech_first"])
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
