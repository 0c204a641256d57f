package matching

import (
	"context"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/similarity"
)

const (
	exactSkillWeight    = 0.7
	semanticSkillWeight = 0.3
)

type embedder interface {
	Embed(ctx context.Context, text string) (embedding.Vector, error)
}

// SkillMatch is the outcome of comparing candidate skills with job skills.
type SkillMatch struct {
	Score float64
	// Matched lists exact and semantic matches in job skill order.
	Matched []string
	// Missing lists the job skills left uncovered, in job skill order.
	Missing  []string
	Exact    []string
	Semantic []string
}

// MatchSkills scores how well candidateSkills cover jobSkills. Skills are
// compared after NormalizeSkills. Job skills without an exact match count as
// covered when the closest candidate skill has a cosine similarity of at
// least threshold.
func MatchSkills(ctx context.Context, emb embedder, candidateSkills, jobSkills []string, threshold float64) (SkillMatch, error) {
	candidate := NormalizeSkills(candidateSkills)
	job := NormalizeSkills(jobSkills)

	result := SkillMatch{
		Matched:  []string{},
		Missing:  []string{},
		Exact:    []string{},
		Semantic: []string{},
	}

	if len(job) == 0 {
		result.Score = 1
		return result, nil
	}

	have := make(map[string]struct{}, len(candidate))
	for _, skill := range candidate {
		have[skill] = struct{}{}
	}

	var uncovered []string
	for _, skill := range job {
		if _, ok := have[skill]; ok {
			result.Exact = append(result.Exact, skill)
			continue
		}
		uncovered = append(uncovered, skill)
	}

	exactScore := float64(len(result.Exact)) / float64(len(job))

	semantic := make(map[string]struct{})
	if len(uncovered) > 0 && len(candidate) > 0 {
		candidateVecs := make([]embedding.Vector, 0, len(candidate))
		for _, skill := range candidate {
			vec, err := emb.Embed(ctx, skill)
			if err != nil {
				return SkillMatch{}, embedding.Unavailable(err)
			}
			candidateVecs = append(candidateVecs, vec)
		}

		for _, skill := range uncovered {
			vec, err := emb.Embed(ctx, skill)
			if err != nil {
				return SkillMatch{}, embedding.Unavailable(err)
			}

			best := 0.0
			for _, cv := range candidateVecs {
				if s := similarity.Score(vec, cv); s > best {
					best = s
				}
			}

			if best >= threshold {
				semantic[skill] = struct{}{}
			}
		}
	}

	var semanticScore float64
	if len(uncovered) > 0 {
		semanticScore = float64(len(semantic)) / float64(len(uncovered))
	}
	result.Score = similarity.Clamp01(exactSkillWeight*exactScore + semanticSkillWeight*semanticScore)

	for _, skill := range job {
		if _, ok := have[skill]; ok {
			result.Matched = append(result.Matched, skill)
			continue
		}
		if _, ok := semantic[skill]; ok {
			result.Matched = append(result.Matched, skill)
			result.Semantic = append(result.Semantic, skill)
			continue
		}
		result.Missing = append(result.Missing, skill)
	}

	return result, nil
}
