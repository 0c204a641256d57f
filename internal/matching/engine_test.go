package matching

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/candidate-matcher/internal/embedding"
)

func backendJob() *Job {
	return &Job{
		ID:                 "job-1",
		Title:              "Backend Engineer",
		Description:        "Build and run data services",
		Skills:             []string{"python", "ReactJS", "postgresql", "docker"},
		Requirements:       []string{"Build APIs"},
		MinExperienceYears: floatPtr(5),
		Location:           "Berlin",
	}
}

func strongCandidate(id string) *Candidate {
	return &Candidate{
		ID:              id,
		Name:            "Ada",
		Skills:          []string{"python", "javascript", "react", "sql"},
		ExperienceYears: 7,
	}
}

func newTestEngine(t *testing.T, cfg Config, provider embedding.Provider) *Engine {
	t.Helper()

	engine, err := NewEngine(cfg, provider, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Weights.Skills = 0.3

	if _, err := NewEngine(cfg, newStubProvider(), nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	if _, err := NewEngine(DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error for missing provider")
	}
}

func TestMatchSingleScoresFactors(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), newStubProvider())

	got, err := engine.MatchSingle(context.Background(), strongCandidate("a"), backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := FactorBreakdown{Skills: 0.375, Experience: 1, Semantic: 1, Education: 1}
	for _, f := range Factors {
		if math.Abs(got.Breakdown.Get(f)-want.Get(f)) > 1e-9 {
			t.Fatalf("expected %s %v, got %v", f, want.Get(f), got.Breakdown.Get(f))
		}
	}
	if got.Breakdown.Location != nil {
		t.Fatalf("expected no location bonus, got %v", *got.Breakdown.Location)
	}

	if math.Abs(got.Score-0.75) > 1e-9 {
		t.Fatalf("expected score 0.75, got %v", got.Score)
	}
	if got.Percentage != 75 {
		t.Fatalf("expected percentage 75, got %d", got.Percentage)
	}
	if got.Tier != TierGood {
		t.Fatalf("expected tier good, got %s", got.Tier)
	}
	if !reflect.DeepEqual(got.MissingSkills, []string{"docker"}) {
		t.Fatalf("expected missing [docker], got %v", got.MissingSkills)
	}
	if got.Explanation == "" || len(got.Recommendations) == 0 {
		t.Fatalf("expected explanation and recommendations, got %+v", got)
	}
}

func TestMatchSingleSkillsPartitionJobSkills(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), newStubProvider())
	job := backendJob()

	got, err := engine.MatchSingle(context.Background(), strongCandidate("a"), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]int)
	for _, s := range got.MatchedSkills {
		seen[s]++
	}
	for _, s := range got.MissingSkills {
		seen[s]++
	}

	union := make([]string, 0, len(seen))
	for s, n := range seen {
		if n != 1 {
			t.Fatalf("skill %q reported %d times", s, n)
		}
		union = append(union, s)
	}
	sort.Strings(union)

	want := NormalizeSkills(job.Skills)
	sort.Strings(want)
	if !reflect.DeepEqual(union, want) {
		t.Fatalf("expected %v, got %v", want, union)
	}
}

func TestMatchSingleIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), newStubProvider())

	first, err := engine.MatchSingle(context.Background(), strongCandidate("a"), backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.MatchSingle(context.Background(), strongCandidate("a"), backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestMatchSingleLocationBonus(t *testing.T) {
	t.Parallel()

	t.Run("adds bonus for same location", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, DefaultConfig(), newStubProvider())
		candidate := strongCandidate("a")
		candidate.Location = "  berlin "

		got, err := engine.MatchSingle(context.Background(), candidate, backendJob())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Breakdown.Location == nil || *got.Breakdown.Location != 1 {
			t.Fatalf("expected location match 1, got %v", got.Breakdown.Location)
		}
		if math.Abs(got.Score-0.80) > 1e-9 {
			t.Fatalf("expected score 0.80, got %v", got.Score)
		}
	})

	t.Run("reports differing locations without bonus", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, DefaultConfig(), newStubProvider())
		candidate := strongCandidate("a")
		candidate.Location = "Paris"

		got, err := engine.MatchSingle(context.Background(), candidate, backendJob())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Breakdown.Location == nil || *got.Breakdown.Location != 0 {
			t.Fatalf("expected location match 0, got %v", got.Breakdown.Location)
		}
		if math.Abs(got.Score-0.75) > 1e-9 {
			t.Fatalf("expected score 0.75, got %v", got.Score)
		}
	})

	t.Run("clamps after bonus", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.LocationBonus = 0.5
		engine := newTestEngine(t, cfg, newStubProvider())

		candidate := strongCandidate("a")
		candidate.Location = "Berlin"

		got, err := engine.MatchSingle(context.Background(), candidate, backendJob())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Score != 1 || got.Percentage != 100 || got.Tier != TierExcellent {
			t.Fatalf("expected clamped score 1, got %v (%d%%, %s)", got.Score, got.Percentage, got.Tier)
		}
	})
}

func TestMatchSingleBounds(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), embedding.NewHashed(64))

	candidates := []*Candidate{
		{ID: "empty"},
		{ID: "negative", ExperienceYears: -3, Skills: []string{"Go"}},
		strongCandidate("strong"),
		{ID: "edu", Education: []Education{{Degree: "BSc", Field: "Physics"}}, Summary: "Physicist turned engineer"},
	}
	jobs := []*Job{
		{ID: "blank"},
		backendJob(),
		{ID: "degree", Requirements: []string{"Master degree in physics"}, MinExperienceYears: floatPtr(0)},
	}

	for _, c := range candidates {
		for _, j := range jobs {
			got, err := engine.MatchSingle(context.Background(), c, j)
			if err != nil {
				t.Fatalf("%s/%s: unexpected error: %v", c.ID, j.ID, err)
			}
			if got.Score < 0 || got.Score > 1 {
				t.Fatalf("%s/%s: score out of bounds: %v", c.ID, j.ID, got.Score)
			}
			for _, f := range Factors {
				if v := got.Breakdown.Get(f); v < 0 || v > 1 {
					t.Fatalf("%s/%s: %s out of bounds: %v", c.ID, j.ID, f, v)
				}
			}
		}
	}
}

func TestMatchSingleProviderFailure(t *testing.T) {
	t.Parallel()

	provider := newStubProvider()
	provider.err = errors.New("model crashed")
	engine := newTestEngine(t, DefaultConfig(), provider)

	_, err := engine.MatchSingle(context.Background(), strongCandidate("a"), backendJob())
	if !errors.Is(err, embedding.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestMatchSingleLogsScore(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := NewEngine(DefaultConfig(), newStubProvider(), zap.New(core))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := engine.MatchSingle(context.Background(), strongCandidate("a"), backendJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("candidate scored").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["candidate_id"] != "a" || fields["job_id"] != "job-1" || fields["embedding_provider"] != "stub" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}

func TestMatchBatchRanksCandidates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinScore = 0.5
	cfg.Workers = 1
	provider := newStubProvider()
	engine := newTestEngine(t, cfg, provider)

	weak := &Candidate{ID: "b", Name: "Bob"}
	candidates := []*Candidate{strongCandidate("c"), weak, strongCandidate("a")}

	got, err := engine.MatchBatch(context.Background(), candidates, backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.JobID != "job-1" || got.TotalCandidates != 3 || got.Filtered != 1 {
		t.Fatalf("unexpected batch summary: %+v", got)
	}
	if want := (0.75 + 0.75 + 0.35) / 3; math.Abs(got.AverageScore-want) > 1e-9 {
		t.Fatalf("expected average %v, got %v", want, got.AverageScore)
	}

	if len(got.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got.Matches))
	}
	for i, want := range []string{"a", "c"} {
		if got.Matches[i].CandidateID != want || got.Matches[i].Rank != i+1 {
			t.Fatalf("match %d: expected %s ranked %d, got %s ranked %d",
				i, want, i+1, got.Matches[i].CandidateID, got.Matches[i].Rank)
		}
	}

	if want := []string{"postgresql", "python", "reactjs"}; !reflect.DeepEqual(got.TopSkills, want) {
		t.Fatalf("expected top skills %v, got %v", want, got.TopSkills)
	}

	if calls := provider.callsFor("docker"); calls != 1 {
		t.Fatalf("expected docker to be embedded once per batch, got %d", calls)
	}

	if got.FindByCandidate("b") != nil {
		t.Fatal("expected filtered candidate to be absent")
	}
}

func TestMatchBatchTopSkillsCountFilteredCandidates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinScore = 0.99
	engine := newTestEngine(t, cfg, newStubProvider())

	got, err := engine.MatchBatch(context.Background(),
		[]*Candidate{{ID: "a", Skills: []string{"python"}}}, backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Filtered != 1 || len(got.Matches) != 0 {
		t.Fatalf("expected the only candidate to be filtered, got %+v", got)
	}
	if want := []string{"python"}; !reflect.DeepEqual(got.TopSkills, want) {
		t.Fatalf("expected top skills %v, got %v", want, got.TopSkills)
	}
}

func TestMatchBatchOrderIsTotal(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), embedding.NewHashed(64))

	candidates := []*Candidate{
		{ID: "z", Skills: []string{"python"}, ExperienceYears: 5},
		{ID: "y", Skills: []string{"python"}, ExperienceYears: 5},
		{ID: "x", Skills: []string{"docker", "postgresql"}, ExperienceYears: 2},
		{ID: "w", Skills: []string{"python", "docker", "reactjs", "postgresql"}, ExperienceYears: 9},
		{ID: "v"},
	}

	got, err := engine.MatchBatch(context.Background(), candidates, backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(got.Matches); i++ {
		prev, cur := got.Matches[i-1], got.Matches[i]
		if prev.Score < cur.Score || (prev.Score == cur.Score && prev.CandidateID >= cur.CandidateID) {
			t.Fatalf("matches out of order at %d: %s(%v) before %s(%v)",
				i, prev.CandidateID, prev.Score, cur.CandidateID, cur.Score)
		}
	}

	y, z := got.FindByCandidate("y"), got.FindByCandidate("z")
	if y == nil || z == nil || y.Rank > z.Rank {
		t.Fatalf("expected y ranked before z on a tie")
	}
}

func TestMatchBatchEmpty(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, DefaultConfig(), newStubProvider())

	got, err := engine.MatchBatch(context.Background(), nil, backendJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalCandidates != 0 || got.AverageScore != 0 || got.Matches == nil || len(got.Matches) != 0 {
		t.Fatalf("unexpected empty batch result: %+v", got)
	}
}

func TestMatchBatchFailsAsAWhole(t *testing.T) {
	t.Parallel()

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()

		provider := newStubProvider()
		provider.err = errors.New("model crashed")
		engine := newTestEngine(t, DefaultConfig(), provider)

		got, err := engine.MatchBatch(context.Background(), []*Candidate{strongCandidate("a"), strongCandidate("b")}, backendJob())
		if !errors.Is(err, embedding.ErrModelUnavailable) || got != nil {
			t.Fatalf("expected ErrModelUnavailable and no result, got %v, %+v", err, got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, DefaultConfig(), newStubProvider())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := engine.MatchBatch(ctx, []*Candidate{strongCandidate("a")}, backendJob())
		if !errors.Is(err, context.Canceled) || got != nil {
			t.Fatalf("expected context.Canceled and no result, got %v, %+v", err, got)
		}
	})
}
