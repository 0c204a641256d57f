package matching

import (
	"context"
	"sync"

	"github.com/spigell/candidate-matcher/internal/embedding"
)

const stubDimension = 8

// stubVectors pins the similarities the scoring tests rely on:
// react~reactjs and sql~postgresql are close, docker is unrelated to all.
var stubVectors = map[string]embedding.Vector{
	"python":     {1, 0, 0, 0, 0, 0, 0, 0},
	"javascript": {0, 1, 0, 0, 0, 0, 0, 0},
	"react":      {0, 0, 1, 0, 0, 0, 0, 0},
	"reactjs":    {0, 0, 0.9, 0.1, 0, 0, 0, 0},
	"sql":        {0, 0, 0, 0, 1, 0, 0, 0},
	"postgresql": {0, 0, 0, 0, 0.8, 0.2, 0, 0},
	"docker":     {0, 0, 0, 0, 0, 0, 1, 0},
}

type stubProvider struct {
	vectors  map[string]embedding.Vector
	fallback embedding.Vector
	err      error

	mu    sync.Mutex
	calls map[string]int
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		vectors:  stubVectors,
		fallback: embedding.Vector{0, 0, 0, 0, 0, 0, 0, 1},
		calls:    make(map[string]int),
	}
}

func (s *stubProvider) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.calls[text]++
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return s.fallback, nil
}

func (s *stubProvider) Dimension() int { return stubDimension }
func (s *stubProvider) Name() string   { return "stub" }
func (s *stubProvider) Model() string  { return "stub-v1" }

func (s *stubProvider) callsFor(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[text]
}

func floatPtr(v float64) *float64 { return &v }
