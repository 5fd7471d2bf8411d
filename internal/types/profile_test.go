//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTerms(t *testing.T) {
	got := NormalizeTerms([]string{" Python", "SQL", "python", "", "Machine Learning", "sql "})
	assert.Equal(t, []string{"python", "sql", "machine learning"}, got)
}

func TestNormalizeTerms_Empty(t *testing.T) {
	assert.Empty(t, NormalizeTerms(nil))
}

func TestCandidateProfile_Normalize(t *testing.T) {
	c := CandidateProfile{
		Skills:      []string{"Python", "AWS", "python"},
		Keywords:    []string{"ETL", "aws"},
		TargetRoles: []string{"Data Engineer", "data engineer", "ML Engineer"},
	}
	c.Normalize()

	assert.Equal(t, []string{"python", "aws"}, c.Skills)
	assert.Equal(t, []string{"etl", "aws", "python"}, c.Keywords)
	assert.Equal(t, []string{"data engineer", "ml engineer"}, c.TargetRoles)
	for _, s := range c.Skills {
		assert.Contains(t, c.Keywords, s)
	}
}

func TestCandidateProfile_Names(t *testing.T) {
	c := CandidateProfile{Name: "Ada  Byron Lovelace"}
	assert.Equal(t, "Ada", c.FirstName())
	assert.Equal(t, "Byron Lovelace", c.LastName())

	single := CandidateProfile{Name: "Cher"}
	assert.Equal(t, "Cher", single.FirstName())
	assert.Equal(t, "", single.LastName())

	empty := CandidateProfile{}
	assert.Equal(t, "", empty.FirstName())
}
