package matching

import (
	"context"
	"fmt"
)

const (
	strongSkills      = 0.7
	strongExperience  = 0.8
	strongSemantic    = 0.7
	weakSkills        = 0.5
	weakExperience    = 0.6
	weakEducation     = 0.5
	notableSkillCount = 5
)

var decisions = map[Tier]string{
	TierExcellent: "Strongly recommended: move to interview.",
	TierGood:      "Recommended: worth an interview.",
	TierMedium:    "Consider: review the gaps before deciding.",
	TierLow:       "Not recommended for this role.",
}

// Explain scores the pair and adds a per-factor analysis with strengths,
// weaknesses and a hiring decision.
func (e *Engine) Explain(ctx context.Context, candidate *Candidate, job *Job) (*ExplainResult, error) {
	result, err := e.MatchSingle(ctx, candidate, job)
	if err != nil {
		return nil, err
	}

	b := result.Breakdown
	explained := &ExplainResult{
		MatchResult: result,
		Analysis:    make(map[Factor]string, len(Factors)),
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: result.Recommendations,
		Decision:    decisions[result.Tier],
	}

	explained.Analysis[FactorSkills] = fmt.Sprintf("%s skills match: %d of %d required skills covered.",
		percent(b.Skills), len(result.MatchedSkills), len(result.MatchedSkills)+len(result.MissingSkills))
	explained.Analysis[FactorExperience] = experienceAnalysis(candidate, job, b.Experience)
	explained.Analysis[FactorSemantic] = fmt.Sprintf("%s profile similarity to the job description.", percent(b.Semantic))
	explained.Analysis[FactorEducation] = fmt.Sprintf("%s education fit.", percent(b.Education))

	if b.Skills >= strongSkills {
		explained.Strengths = append(explained.Strengths, "Strong technical skills alignment")
	}
	if b.Experience >= strongExperience {
		explained.Strengths = append(explained.Strengths, "Relevant experience level")
	}
	if b.Semantic >= strongSemantic {
		explained.Strengths = append(explained.Strengths, "Profile closely matches the job description")
	}
	if len(result.MatchedSkills) > notableSkillCount {
		explained.Strengths = append(explained.Strengths, fmt.Sprintf("Broad skill set (%d matched skills)", len(result.MatchedSkills)))
	}

	if b.Skills < weakSkills {
		explained.Weaknesses = append(explained.Weaknesses, "Limited technical skills alignment")
	}
	if b.Experience < weakExperience {
		explained.Weaknesses = append(explained.Weaknesses, "Experience below the requirement")
	}
	if len(result.MissingSkills) > notableSkillCount {
		explained.Weaknesses = append(explained.Weaknesses, fmt.Sprintf("Many required skills missing (%d)", len(result.MissingSkills)))
	}
	if b.Education < weakEducation {
		explained.Weaknesses = append(explained.Weaknesses, "Education does not match the requirements")
	}

	if len(explained.Strengths) == 0 {
		explained.Strengths = append(explained.Strengths, "No outstanding strengths for this role")
	}
	if len(explained.Weaknesses) == 0 {
		explained.Weaknesses = append(explained.Weaknesses, "No significant weaknesses found")
	}

	return explained, nil
}

func experienceAnalysis(candidate *Candidate, job *Job, score float64) string {
	if job.MinExperienceYears == nil || *job.MinExperienceYears <= 0 {
		return fmt.Sprintf("%s years of experience; the role sets no minimum.", formatYears(candidate.ExperienceYears))
	}
	return fmt.Sprintf("%s years of experience against %s required (%s).",
		formatYears(candidate.ExperienceYears), formatYears(*job.MinExperienceYears), percent(score))
}
