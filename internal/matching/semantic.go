package matching

import (
	"context"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/similarity"
	"github.com/spigell/candidate-matcher/internal/utils"
)

// CandidateProfileText joins the summary and the experience narrative.
func CandidateProfileText(c *Candidate) string {
	parts := make([]string, 0, len(c.Experience)+1)
	parts = append(parts, c.Summary)

	for _, exp := range c.Experience {
		role := utils.JoinNonEmpty(" at ", exp.Position, exp.Company)
		parts = append(parts, utils.JoinNonEmpty(". ", role, exp.Description))
	}

	return utils.JoinNonEmpty(" ", parts...)
}

// JobProfileText joins the title, description and requirements.
func JobProfileText(j *Job) string {
	head := utils.JoinNonEmpty(". ", j.Title, j.Description)
	if head != "" {
		head += "."
	}
	return utils.JoinNonEmpty(" ", append([]string{head}, j.Requirements...)...)
}

// SemanticScore embeds both profile texts once and returns their similarity.
// An empty candidate profile is embedded as the empty string.
func SemanticScore(ctx context.Context, emb embedder, candidate *Candidate, job *Job) (float64, error) {
	candidateVec, err := emb.Embed(ctx, CandidateProfileText(candidate))
	if err != nil {
		return 0, embedding.Unavailable(err)
	}

	jobVec, err := emb.Embed(ctx, JobProfileText(job))
	if err != nil {
		return 0, embedding.Unavailable(err)
	}

	return similarity.Score(candidateVec, jobVec), nil
}
