package prompts

import (
	"strings"

	"github.com/jonathan/apply-engine/internal/types"
)

// maxLetterSkills caps how many skills are named in a letter.
const maxLetterSkills = 5

// CoverLetter renders the named cover letter variant for a posting.
func CoverLetter(variant string, profile *types.CandidateProfile, posting *types.Posting) (string, error) {
	tmpl, err := Get(CoverLetterFile, variant)
	if err != nil {
		return "", err
	}

	company := posting.Company
	if company == "" {
		company = "your"
	}
	title := posting.Title
	if title == "" {
		title = "open"
	}

	skills := profile.Skills
	if len(skills) > maxLetterSkills {
		skills = skills[:maxLetterSkills]
	}

	letter := Format(tmpl, map[string]string{
		"Company": company,
		"Title":   title,
		"Summary": profile.Summary,
		"Skills":  strings.Join(skills, ", "),
		"Name":    profile.Name,
		"Email":   profile.Email,
		"Phone":   profile.Phone,
	})
	return strings.TrimSpace(letter), nil
}
