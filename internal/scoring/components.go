// Package scoring computes heuristic fit scores for job postings against a candidate profile.
package scoring

import "strings"

// Sub-score caps. The aggregate is clamped to MaxScore.
const (
	maxTitleScore   = 25.0
	maxSkillScore   = 40.0
	maxKeywordScore = 20.0
	salaryScore     = 5.0
	companyScore    = 5.0

	// MaxScore is the upper bound of an aggregate score
	MaxScore = 100.0
)

// Title weights
const (
	targetRoleBonus = 15.0
	genericBonus    = 5.0
	seniorityBonus  = 3.0
	managementCost  = 10.0
)

// Overlap and location weights
const (
	skillRatioWeight     = 30.0
	highValueBonus       = 2.0
	maxHighValueBonus    = 10.0
	keywordRatioWeight   = 20.0
	remoteScore          = 5.0
	preferredRegionScore = 4.0
	countryScore         = 2.0
)

var (
	genericTitleTerms  = []string{"data", "engineer", "ml", "machine learning", "ai"}
	seniorityTerms     = []string{"senior", "lead", "staff", "principal"}
	managementTerms    = []string{"manager", "director", "vp", "executive"}
	preferredRegions   = []string{"los angeles", "la", "california", "ca"}
	countryTerms       = []string{"united states", "usa"}
	companySignalTerms = []string{"tech", "ai", "data", "cloud", "software", "digital", "analytics"}

	highValueSkills = map[string]bool{
		"python":     true,
		"sql":        true,
		"aws":        true,
		"gcp":        true,
		"airflow":    true,
		"dbt":        true,
		"tensorflow": true,
		"pytorch":    true,
		"spark":      true,
		"bigquery":   true,
	}
)

// containsAny reports whether s contains any of the terms as a substring.
func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// scoreTitle rewards target-role and domain terms and penalizes management titles.
func scoreTitle(title string, targetRoles []string) float64 {
	if title == "" {
		return 0
	}
	t := strings.ToLower(title)
	score := 0.0

	for _, role := range targetRoles {
		if strings.Contains(t, role) {
			score += targetRoleBonus
			break
		}
	}
	if containsAny(t, genericTitleTerms) {
		score += genericBonus
	}
	if containsAny(t, seniorityTerms) {
		score += seniorityBonus
	}
	if containsAny(t, managementTerms) {
		score -= managementCost
	}

	if score < 0 {
		return 0
	}
	return min(score, maxTitleScore)
}

// scoreSkills returns the skill sub-score and the matched skills.
func scoreSkills(text string, skills []string) (float64, []string) {
	if len(skills) == 0 {
		return 0, nil
	}

	var matched []string
	highValue := 0
	for _, skill := range skills {
		if strings.Contains(text, skill) {
			matched = append(matched, skill)
			if highValueSkills[skill] {
				highValue++
			}
		}
	}

	ratio := float64(len(matched)) / float64(len(skills))
	base := ratio * skillRatioWeight
	bonus := min(float64(highValue)*highValueBonus, maxHighValueBonus)
	return min(base+bonus, maxSkillScore), matched
}

func scoreKeywords(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched++
		}
	}
	return min(float64(matched)/float64(len(keywords))*keywordRatioWeight, maxKeywordScore)
}

// scoreLocation applies the first matching rule: remote, preferred region, country.
func scoreLocation(location string) float64 {
	if location == "" {
		return 0
	}
	l := strings.ToLower(location)
	switch {
	case strings.Contains(l, "remote"):
		return remoteScore
	case containsAny(l, preferredRegions):
		return preferredRegionScore
	case containsAny(l, countryTerms):
		return countryScore
	default:
		return 0
	}
}

func scoreSalary(salary string) float64 {
	if strings.TrimSpace(salary) == "" {
		return 0
	}
	return salaryScore
}

func scoreCompany(company string) float64 {
	if company == "" {
		return 0
	}
	if containsAny(strings.ToLower(company), companySignalTerms) {
		return companyScore
	}
	return 0
}
