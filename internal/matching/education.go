package matching

import (
	"context"
	"strings"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/similarity"
	"github.com/spigell/candidate-matcher/internal/utils"
)

// HasEducationRequirement reports whether any requirement mentions one of the
// (lower-cased) keywords.
func HasEducationRequirement(requirements []string, keywords []string) bool {
	for _, requirement := range requirements {
		requirement = strings.ToLower(requirement)
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(requirement, keyword) {
				return true
			}
		}
	}
	return false
}

// EducationText renders education entries as "degree in field" sentences.
func EducationText(entries []Education) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, utils.JoinNonEmpty(" in ", entry.Degree, entry.Field))
	}
	return utils.JoinNonEmpty(". ", parts...)
}

// EducationScore is 1 when the job imposes no education requirement,
// missingScore when it does and the candidate lists no education, and the
// similarity of education and requirement texts otherwise.
func EducationScore(ctx context.Context, emb embedder, candidate *Candidate, job *Job, keywords []string, missingScore float64) (float64, error) {
	if !HasEducationRequirement(job.Requirements, keywords) {
		return 1, nil
	}

	educationText := EducationText(candidate.Education)
	if educationText == "" {
		return missingScore, nil
	}

	eduVec, err := emb.Embed(ctx, educationText)
	if err != nil {
		return 0, embedding.Unavailable(err)
	}

	reqVec, err := emb.Embed(ctx, utils.JoinNonEmpty(" ", job.Requirements...))
	if err != nil {
		return 0, embedding.Unavailable(err)
	}

	return similarity.Score(eduVec, reqVec), nil
}
