package dispatch

import (
	"context"
	"errors"

	"github.com/jonathan/apply-engine/internal/automation"
	"github.com/jonathan/apply-engine/internal/prompts"
	"github.com/jonathan/apply-engine/internal/types"
)

// ErrFormNotFound is returned when a provider's expected form fields are absent.
var ErrFormNotFound = errors.New("application form not found")

// ErrNoSubmitButton is returned when a form was filled but cannot be submitted.
var ErrNoSubmitButton = errors.New("submit button not found")

// ErrManualReview marks forms that were filled but left for a human to submit.
var ErrManualReview = errors.New("form filled, manual review required")

// Applicant is the data a strategy fills into a form
type Applicant struct {
	Profile *types.CandidateProfile

	// ResumePath is a local file attached to upload fields when set.
	ResumePath string
	// CoverLetterVariant selects the cover letter template.
	CoverLetterVariant string
}

// Strategy fills and optionally submits the form open in the session. It
// returns true only when the application was submitted.
type Strategy func(ctx context.Context, s automation.Session, a *Applicant, p *types.Posting) (bool, error)

// Table maps provider names to strategies
type Table map[string]Strategy

// GenericProvider is the table key used for providers without a dedicated strategy.
const GenericProvider = "generic"

// DefaultTable returns the built-in strategies for tier-1 providers.
func DefaultTable() Table {
	return Table{
		"jazzhr":        JazzHR,
		"bamboohr":      BambooHR,
		"recruitee":     Generic,
		"manatal":       Generic,
		"pinpoint":      Generic,
		GenericProvider: Generic,
	}
}

// Lookup returns the strategy for provider, falling back to the generic entry.
func (t Table) Lookup(provider string) Strategy {
	if s, ok := t[provider]; ok {
		return s
	}
	if s, ok := t[GenericProvider]; ok {
		return s
	}
	return Generic
}

// Common selectors
const (
	selSubmit   = `button[type="submit"]`
	selFile     = `input[type="file"]`
	selEmail    = `input[type="email"]`
	selTel      = `input[type="tel"]`
	selTextarea = `textarea[name="cover_letter"]`
)

// JazzHR fills the name, email and phone fields, attaches the resume and a
// cover letter when the form asks for them, and submits.
func JazzHR(ctx context.Context, s automation.Session, a *Applicant, p *types.Posting) (bool, error) {
	const (
		selName  = `input[name="name"]`
		selMail  = `input[name="email"]`
		selPhone = `input[name="phone"]`
	)

	if ok, err := s.Exists(ctx, selName); err != nil || !ok {
		return false, formMissing(err)
	}

	profile := a.Profile
	if err := s.Fill(ctx, selName, profile.Name); err != nil {
		return false, err
	}
	if err := s.Fill(ctx, selMail, profile.Email); err != nil {
		return false, err
	}
	if _, err := fillIfPresent(ctx, s, selPhone, profile.Phone); err != nil {
		return false, err
	}
	if err := attachResume(ctx, s, a); err != nil {
		return false, err
	}

	if ok, err := s.Exists(ctx, selTextarea); err != nil {
		return false, err
	} else if ok {
		letter, err := prompts.CoverLetter(a.coverLetterVariant(), profile, p)
		if err != nil {
			return false, err
		}
		if err := s.Fill(ctx, selTextarea, letter); err != nil {
			return false, err
		}
	}

	return submit(ctx, s)
}

// BambooHR fills split name fields, email and phone, and submits.
func BambooHR(ctx context.Context, s automation.Session, a *Applicant, _ *types.Posting) (bool, error) {
	const (
		selFirst = `input[id*="first"]`
		selLast  = `input[id*="last"]`
	)

	if ok, err := s.Exists(ctx, selFirst); err != nil || !ok {
		return false, formMissing(err)
	}

	profile := a.Profile
	if err := s.Fill(ctx, selFirst, profile.FirstName()); err != nil {
		return false, err
	}
	if _, err := fillIfPresent(ctx, s, selLast, profile.LastName()); err != nil {
		return false, err
	}
	if err := s.Fill(ctx, selEmail, profile.Email); err != nil {
		return false, err
	}
	if _, err := fillIfPresent(ctx, s, selTel, profile.Phone); err != nil {
		return false, err
	}
	if err := attachResume(ctx, s, a); err != nil {
		return false, err
	}

	return submit(ctx, s)
}

var (
	genericNameSelectors  = []string{`input[name*="name"]`, `input[id*="name"]`, `input[placeholder*="name"]`}
	genericPhoneSelectors = []string{selTel, `input[name*="phone"]`, `input[id*="phone"]`}
)

// Generic fills whichever common contact fields it can find and never
// submits. The form is left for manual review.
func Generic(ctx context.Context, s automation.Session, a *Applicant, _ *types.Posting) (bool, error) {
	profile := a.Profile
	if _, err := fillFirstPresent(ctx, s, genericNameSelectors, profile.Name); err != nil {
		return false, err
	}
	if _, err := fillIfPresent(ctx, s, selEmail, profile.Email); err != nil {
		return false, err
	}
	if _, err := fillFirstPresent(ctx, s, genericPhoneSelectors, profile.Phone); err != nil {
		return false, err
	}
	return false, ErrManualReview
}

func (a *Applicant) coverLetterVariant() string {
	if a.CoverLetterVariant == "" {
		return "default"
	}
	return a.CoverLetterVariant
}

func formMissing(err error) error {
	if err != nil {
		return err
	}
	return ErrFormNotFound
}

// fillIfPresent fills selector when it exists and value is non-empty.
func fillIfPresent(ctx context.Context, s automation.Session, selector, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	ok, err := s.Exists(ctx, selector)
	if err != nil || !ok {
		return false, err
	}
	return true, s.Fill(ctx, selector, value)
}

// fillFirstPresent fills the first existing selector.
func fillFirstPresent(ctx context.Context, s automation.Session, selectors []string, value string) (bool, error) {
	for _, sel := range selectors {
		filled, err := fillIfPresent(ctx, s, sel, value)
		if err != nil || filled {
			return filled, err
		}
	}
	return false, nil
}

func attachResume(ctx context.Context, s automation.Session, a *Applicant) error {
	if a.ResumePath == "" {
		return nil
	}
	ok, err := s.Exists(ctx, selFile)
	if err != nil || !ok {
		return err
	}
	return s.Upload(ctx, selFile, a.ResumePath)
}

func submit(ctx context.Context, s automation.Session) (bool, error) {
	ok, err := s.Exists(ctx, selSubmit)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNoSubmitButton
	}
	if err := s.Click(ctx, selSubmit); err != nil {
		return false, err
	}
	return true, nil
}
