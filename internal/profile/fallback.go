package profile

import "github.com/jonathan/apply-engine/internal/types"

var fallbackSkills = []string{
	"python", "sql", "aws", "gcp", "docker", "git", "tensorflow",
	"pytorch", "langchain", "airflow", "dbt", "bigquery", "postgresql",
	"streamlit", "pandas", "numpy", "scikit-learn", "pyspark",
	"data engineering", "machine learning", "etl", "data pipeline",
	"cloud", "api", "rest api", "mlops", "ci/cd", "kubernetes",
}

var fallbackRoles = []string{
	"data engineer", "ml engineer", "data analyst",
	"machine learning engineer", "ai engineer",
}

// Fallback returns the built-in profile used when the service is unreachable.
// Keywords equal the skills.
func Fallback() *types.CandidateProfile {
	p := &types.CandidateProfile{
		Skills:      append([]string{}, fallbackSkills...),
		Keywords:    append([]string{}, fallbackSkills...),
		TargetRoles: append([]string{}, fallbackRoles...),
		Degraded:    true,
	}
	p.Normalize()
	return p
}
