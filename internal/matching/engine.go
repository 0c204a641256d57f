package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/logger"
	"github.com/spigell/candidate-matcher/internal/similarity"
)

const topSkillsLimit = 10

var errNoProvider = errors.New("embedding provider is required")

// Engine scores candidates against job postings.
type Engine struct {
	cfg      Config
	provider embedding.Provider
	logger   *zap.Logger
	keywords []string
	workers  int
}

// NewEngine validates cfg and returns an engine backed by provider.
func NewEngine(cfg Config, provider embedding.Provider, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errNoProvider
	}

	keywords := cfg.EducationKeywords
	if len(keywords) == 0 {
		keywords = DefaultEducationKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(k)))
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	return &Engine{
		cfg:      cfg,
		provider: provider,
		logger:   logger.WithCommonFields(log, provider.Name(), provider.Model()),
		keywords: lowered,
		workers:  workers,
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// MatchSingle scores one candidate against one job.
func (e *Engine) MatchSingle(ctx context.Context, candidate *Candidate, job *Job) (*MatchResult, error) {
	memo := embedding.NewMemo(e.provider)

	result, err := e.match(ctx, memo, candidate, job)
	if err != nil {
		return nil, err
	}

	size, hits := memo.Stats()
	e.logger.Debug("candidate scored",
		append(logger.PairFields(result.CandidateID, result.JobID),
			zap.Float64("score", result.Score),
			zap.String("tier", string(result.Tier)),
			zap.Int("embeddings", size),
			zap.Int("cache_hits", hits),
		)...,
	)

	return result, nil
}

// MatchBatch scores every candidate against job and ranks the results. The
// call either scores all candidates or fails as a whole.
func (e *Engine) MatchBatch(ctx context.Context, candidates []*Candidate, job *Job) (*RankedBatchResult, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}

	memo := embedding.NewMemo(e.provider)
	results := make([]*MatchResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, candidate := range candidates {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := e.match(gctx, memo, candidate, job)
			if err != nil {
				return err
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := e.rank(job, results)

	size, hits := memo.Stats()
	e.logger.Info("batch scored",
		zap.String(logger.FieldJob, job.ID),
		zap.Int("candidates", batch.TotalCandidates),
		zap.Int("matches", len(batch.Matches)),
		zap.Int("filtered", batch.Filtered),
		zap.Float64("average_score", batch.AverageScore),
		zap.Int("embeddings", size),
		zap.Int("cache_hits", hits),
	)

	return batch, nil
}

func (e *Engine) rank(job *Job, results []*MatchResult) *RankedBatchResult {
	batch := &RankedBatchResult{
		JobID:           job.ID,
		JobTitle:        job.Title,
		TotalCandidates: len(results),
		Matches:         []*MatchResult{},
	}

	if len(results) == 0 {
		return batch
	}

	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	batch.AverageScore = sum / float64(len(results))

	sorted := make([]*MatchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].CandidateID < sorted[j].CandidateID
	})

	for _, r := range sorted {
		if r.Score < e.cfg.MinScore {
			batch.Filtered++
			continue
		}
		r.Rank = len(batch.Matches) + 1
		batch.Matches = append(batch.Matches, r)
	}

	batch.TopSkills = topSkills(results)

	return batch
}

// topSkills counts matched skills across all scored candidates, most frequent
// first.
func topSkills(matches []*MatchResult) []string {
	counts := make(map[string]int)
	for _, m := range matches {
		for _, skill := range m.MatchedSkills {
			counts[skill]++
		}
	}

	skills := make([]string, 0, len(counts))
	for skill := range counts {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		if counts[skills[i]] != counts[skills[j]] {
			return counts[skills[i]] > counts[skills[j]]
		}
		return skills[i] < skills[j]
	})

	if len(skills) > topSkillsLimit {
		skills = skills[:topSkillsLimit]
	}
	return skills
}

func (e *Engine) match(ctx context.Context, emb embedder, candidate *Candidate, job *Job) (*MatchResult, error) {
	if candidate == nil || job == nil {
		return nil, errors.New("candidate and job are required")
	}

	skills, err := MatchSkills(ctx, emb, candidate.Skills, job.Skills, e.cfg.SemanticThreshold)
	if err != nil {
		return nil, fmt.Errorf("match skills of %q: %w", candidate.ID, err)
	}

	semantic, err := SemanticScore(ctx, emb, candidate, job)
	if err != nil {
		return nil, fmt.Errorf("compare profile of %q: %w", candidate.ID, err)
	}

	education, err := EducationScore(ctx, emb, candidate, job, e.keywords, e.cfg.EducationMissingScore)
	if err != nil {
		return nil, fmt.Errorf("compare education of %q: %w", candidate.ID, err)
	}

	breakdown := FactorBreakdown{
		Skills:     skills.Score,
		Experience: similarity.Clamp01(ExperienceScore(candidate.ExperienceYears, job.MinExperienceYears)),
		Semantic:   semantic,
		Education:  similarity.Clamp01(education),
	}

	score := e.cfg.Weights.Apply(breakdown)
	if bothLocated(candidate.Location, job.Location) {
		match := 0.0
		if sameLocation(candidate.Location, job.Location) {
			match = 1
			score += e.cfg.LocationBonus
		}
		breakdown.Location = &match
	}
	score = similarity.Clamp01(score)

	result := &MatchResult{
		CandidateID:   candidate.ID,
		CandidateName: candidate.Name,
		JobID:         job.ID,
		Score:         score,
		Percentage:    percentage(score),
		Breakdown:     breakdown,
		MatchedSkills: skills.Matched,
		MissingSkills: skills.Missing,
		Tier:          e.cfg.Tiers.Of(score),
	}
	result.Explanation = explanation(candidate, job, result)
	result.Recommendations = recommendations(job, result)

	return result, nil
}

func bothLocated(a, b string) bool {
	return strings.TrimSpace(a) != "" && strings.TrimSpace(b) != ""
}

func sameLocation(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}
