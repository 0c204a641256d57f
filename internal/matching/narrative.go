package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	explainMatchedLimit   = 5
	explainMissingLimit   = 3
	recommendSkillsLimit  = 3
	weakEducationScore    = 0.6
	weakProfileScore      = 0.6
	maintainProfileAdvice = "Maintain the current profile: it covers the key requirements of this role."
)

var tierSentences = map[Tier]string{
	TierExcellent: "Overall this is an excellent fit.",
	TierGood:      "Overall this is a good fit.",
	TierMedium:    "Overall this is a partial fit that needs a closer look.",
	TierLow:       "Overall this is a weak fit.",
}

func percentage(score float64) int {
	return int(math.Round(score * 100))
}

func percent(score float64) string {
	return strconv.Itoa(percentage(score)) + "%"
}

// strongestAndWeakest picks the factors with the highest and lowest score.
// Ties resolve to the earlier factor in Factors.
func strongestAndWeakest(b FactorBreakdown) (Factor, Factor) {
	strongest, weakest := Factors[0], Factors[0]
	for _, f := range Factors[1:] {
		if b.Get(f) > b.Get(strongest) {
			strongest = f
		}
		if b.Get(f) < b.Get(weakest) {
			weakest = f
		}
	}
	return strongest, weakest
}

func listWithMore(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:limit], ", "), len(items)-limit)
}

func explanation(candidate *Candidate, job *Job, r *MatchResult) string {
	name := candidate.Name
	if name == "" {
		name = "Candidate " + candidate.ID
	}
	title := job.Title
	if title == "" {
		title = "this position"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %d%% match for %s.", name, r.Percentage, title)

	strongest, weakest := strongestAndWeakest(r.Breakdown)
	fmt.Fprintf(&b, " Strongest factor: %s (%s).", strongest, percent(r.Breakdown.Get(strongest)))
	if weakest != strongest {
		fmt.Fprintf(&b, " Weakest factor: %s (%s).", weakest, percent(r.Breakdown.Get(weakest)))
	}

	if len(r.MatchedSkills) > 0 {
		fmt.Fprintf(&b, " Matched skills: %s.", listWithMore(r.MatchedSkills, explainMatchedLimit))
	}
	if len(r.MissingSkills) > 0 {
		fmt.Fprintf(&b, " Missing skills: %s.", listWithMore(r.MissingSkills, explainMissingLimit))
	}

	b.WriteString(" ")
	b.WriteString(tierSentences[r.Tier])

	return b.String()
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}

func recommendations(job *Job, r *MatchResult) []string {
	recs := make([]string, 0, 4)

	if len(r.MissingSkills) > 0 {
		top := r.MissingSkills
		if len(top) > recommendSkillsLimit {
			top = top[:recommendSkillsLimit]
		}
		recs = append(recs, "Develop skills in: "+strings.Join(top, ", ")+".")
	}

	if r.Breakdown.Experience < 1 && job.MinExperienceYears != nil && *job.MinExperienceYears > 0 {
		recs = append(recs, fmt.Sprintf("Close the experience gap: the role asks for %s years.",
			formatYears(*job.MinExperienceYears)))
	}

	if r.Breakdown.Education < weakEducationScore {
		recs = append(recs, "Consider certifications or courses that match the education requirements.")
	}

	if r.Breakdown.Semantic < weakProfileScore {
		recs = append(recs, "Rework the profile summary and experience descriptions to reflect the role.")
	}

	if len(recs) == 0 {
		recs = append(recs, maintainProfileAdvice)
	}

	return recs
}
