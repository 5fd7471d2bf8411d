package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/apply-engine/internal/types"
)

// Scorer scores postings against a fixed candidate profile
type Scorer struct {
	skills      []string
	keywords    []string
	targetRoles []string
}

// New returns a scorer for the profile. The profile is copied and normalized.
func New(profile *types.CandidateProfile) *Scorer {
	if profile == nil {
		return &Scorer{}
	}
	p := types.CandidateProfile{
		Skills:      append([]string{}, profile.Skills...),
		Keywords:    append([]string{}, profile.Keywords...),
		TargetRoles: append([]string{}, profile.TargetRoles...),
	}
	p.Normalize()
	return &Scorer{skills: p.Skills, keywords: p.Keywords, targetRoles: p.TargetRoles}
}

// Breakdown holds the individual sub-scores of one posting
type Breakdown struct {
	Title         float64  `json:"title"`
	Skills        float64  `json:"skills"`
	Keywords      float64  `json:"keywords"`
	Location      float64  `json:"location"`
	Salary        float64  `json:"salary"`
	Company       float64  `json:"company"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
}

// Total sums the sub-scores and clamps the result to [0, MaxScore].
func (b Breakdown) Total() float64 {
	sum := b.Title + b.Skills + b.Keywords + b.Location + b.Salary + b.Company
	return math.Max(0, math.Min(sum, MaxScore))
}

// postingText is the lowercased text searched for skills and keywords.
func postingText(p *types.Posting) string {
	return strings.ToLower(strings.Join([]string{p.Title, p.Description, p.Snippet, p.Company}, " "))
}

// Breakdown computes every sub-score for a posting.
func (s *Scorer) Breakdown(p *types.Posting) Breakdown {
	text := postingText(p)
	skills, matched := scoreSkills(text, s.skills)
	return Breakdown{
		Title:         scoreTitle(p.Title, s.targetRoles),
		Skills:        skills,
		Keywords:      scoreKeywords(text, s.keywords),
		Location:      scoreLocation(p.Location),
		Salary:        scoreSalary(p.Salary),
		Company:       scoreCompany(p.Company),
		MatchedSkills: matched,
	}
}

// Score returns the fit score of a posting in [0, 100].
func (s *Scorer) Score(p *types.Posting) float64 {
	return s.Breakdown(p).Total()
}

// ScoreAll attaches a score rounded to one decimal to every posting and
// sorts the slice by score descending. Ties keep their input order.
func (s *Scorer) ScoreAll(postings []types.Posting) []types.Posting {
	s.Attach(postings)
	SortByScore(postings)
	return postings
}

// Attach sets the rounded score of every posting in place without
// reordering. Only the Score field is written.
func (s *Scorer) Attach(postings []types.Posting) {
	for i := range postings {
		score := round1(s.Score(&postings[i]))
		postings[i].Score = &score
	}
}

// SortByScore stably sorts postings by attached score, highest first.
func SortByScore(postings []types.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].ScoreValue() > postings[j].ScoreValue()
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Filter returns the postings whose attached score is at least minScore.
func Filter(postings []types.Posting, minScore float64) []types.Posting {
	out := make([]types.Posting, 0, len(postings))
	for _, p := range postings {
		if p.ScoreValue() >= minScore {
			out = append(out, p)
		}
	}
	return out
}

// Bands counts scored postings per quality band
type Bands struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

// Band thresholds
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 70.0
	FairThreshold      = 60.0
)

// CountBands sorts scored postings into quality bands.
func CountBands(postings []types.Posting) Bands {
	var b Bands
	for _, p := range postings {
		switch s := p.ScoreValue(); {
		case s >= ExcellentThreshold:
			b.Excellent++
		case s >= GoodThreshold:
			b.Good++
		case s >= FairThreshold:
			b.Fair++
		default:
			b.Poor++
		}
	}
	return b
}
