package matching

import (
	"strings"
)

// EmploymentType is the contract type of a job posting. It does not affect scoring.
type EmploymentType string

const (
	FullTime   EmploymentType = "FULL_TIME"
	PartTime   EmploymentType = "PART_TIME"
	Contract   EmploymentType = "CONTRACT"
	Internship EmploymentType = "INTERNSHIP"
	Remote     EmploymentType = "REMOTE"
)

// Tier is a coarse bucket derived from the overall score.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierMedium    Tier = "medium"
	TierLow       Tier = "low"
)

// Factor names one of the weighted sub-scores.
type Factor string

const (
	FactorSkills     Factor = "skills"
	FactorExperience Factor = "experience"
	FactorSemantic   Factor = "semantic"
	FactorEducation  Factor = "education"
)

// Factors lists the weighted factors in reporting order.
var Factors = []Factor{FactorSkills, FactorExperience, FactorSemantic, FactorEducation}

type Experience struct {
	Company     string   `json:"company,omitempty" mapstructure:"company"`
	Position    string   `json:"position,omitempty" mapstructure:"position"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
	StartDate   string   `json:"start_date,omitempty" mapstructure:"start_date"`
	EndDate     string   `json:"end_date,omitempty" mapstructure:"end_date"`
	Years       *float64 `json:"years,omitempty" mapstructure:"years"`
}

type Education struct {
	Degree      string `json:"degree,omitempty" mapstructure:"degree"`
	Field       string `json:"field,omitempty" mapstructure:"field"`
	Institution string `json:"institution,omitempty" mapstructure:"institution"`
	StartYear   *int   `json:"start_year,omitempty" mapstructure:"start_year"`
	EndYear     *int   `json:"end_year,omitempty" mapstructure:"end_year"`
}

// Candidate is a job seeker profile. It is never modified while being scored.
type Candidate struct {
	ID              string       `json:"id" mapstructure:"id"`
	Name            string       `json:"name" mapstructure:"name"`
	Skills          []string     `json:"skills,omitempty" mapstructure:"skills"`
	ExperienceYears float64      `json:"experience_years" mapstructure:"experience_years"`
	Experience      []Experience `json:"experience,omitempty" mapstructure:"experience"`
	Education       []Education  `json:"education,omitempty" mapstructure:"education"`
	Languages       []string     `json:"languages,omitempty" mapstructure:"languages"`
	Summary         string       `json:"summary,omitempty" mapstructure:"summary"`
	Location        string       `json:"location,omitempty" mapstructure:"location"`
}

// Job is a job posting.
type Job struct {
	ID                 string         `json:"id" mapstructure:"id"`
	Title              string         `json:"title" mapstructure:"title"`
	Description        string         `json:"description" mapstructure:"description"`
	Skills             []string       `json:"skills,omitempty" mapstructure:"skills"`
	Requirements       []string       `json:"requirements,omitempty" mapstructure:"requirements"`
	MinExperienceYears *float64       `json:"min_experience_years,omitempty" mapstructure:"min_experience_years"`
	Location           string         `json:"location,omitempty" mapstructure:"location"`
	SalaryMin          *int           `json:"salary_min,omitempty" mapstructure:"salary_min"`
	SalaryMax          *int           `json:"salary_max,omitempty" mapstructure:"salary_max"`
	Type               EmploymentType `json:"type,omitempty" mapstructure:"type"`
}

// FactorBreakdown holds the independently computed factor scores.
type FactorBreakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Semantic   float64 `json:"semantic"`
	Education  float64 `json:"education"`
	// Location is 1 when the locations match, 0 when they differ and nil
	// when either side has none. It is not weighted.
	Location *float64 `json:"location,omitempty"`
}

// Get returns the score of factor f.
func (b FactorBreakdown) Get(f Factor) float64 {
	switch f {
	case FactorSkills:
		return b.Skills
	case FactorExperience:
		return b.Experience
	case FactorSemantic:
		return b.Semantic
	case FactorEducation:
		return b.Education
	default:
		return 0
	}
}

type MatchResult struct {
	CandidateID     string          `json:"candidate_id"`
	CandidateName   string          `json:"candidate_name,omitempty"`
	JobID           string          `json:"job_id"`
	Score           float64         `json:"score"`
	Percentage      int             `json:"percentage"`
	Breakdown       FactorBreakdown `json:"breakdown"`
	MatchedSkills   []string        `json:"matched_skills"`
	MissingSkills   []string        `json:"missing_skills"`
	Tier            Tier            `json:"tier"`
	Explanation     string          `json:"explanation"`
	Recommendations []string        `json:"recommendations"`
	Rank            int             `json:"rank,omitempty"`
}

type RankedBatchResult struct {
	JobID           string         `json:"job_id"`
	JobTitle        string         `json:"job_title,omitempty"`
	TotalCandidates int            `json:"total_candidates"`
	AverageScore    float64        `json:"average_score"`
	Filtered        int            `json:"filtered"`
	Matches         []*MatchResult `json:"matches"`
	TopSkills       []string       `json:"top_skills,omitempty"`
}

// FindByCandidate returns the ranked match of the given candidate, or nil.
func (r *RankedBatchResult) FindByCandidate(id string) *MatchResult {
	for _, m := range r.Matches {
		if m.CandidateID == id {
			return m
		}
	}
	return nil
}

// ExplainResult extends a MatchResult with a per-factor narrative.
type ExplainResult struct {
	*MatchResult
	Analysis    map[Factor]string `json:"analysis"`
	Strengths   []string          `json:"strengths"`
	Weaknesses  []string          `json:"weaknesses"`
	Suggestions []string          `json:"suggestions"`
	Decision    string            `json:"decision"`
}

// NormalizeSkills lower-cases and trims skills, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
