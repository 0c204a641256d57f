package embedding

import (
	"context"
	"sync"
)

// Memo caches vectors for the lifetime of one scoring call so the same text is
// embedded at most once. It is safe for concurrent use.
type Memo struct {
	provider Provider

	mu    sync.Mutex
	items map[string]Vector
	hits  int
}

// NewMemo wraps provider with a call-scoped cache.
func NewMemo(provider Provider) *Memo {
	return &Memo{
		provider: provider,
		items:    make(map[string]Vector),
	}
}

func (m *Memo) Embed(ctx context.Context, text string) (Vector, error) {
	m.mu.Lock()
	if vec, ok := m.items[text]; ok {
		m.hits++
		m.mu.Unlock()
		return vec, nil
	}
	m.mu.Unlock()

	vec, err := m.provider.Embed(ctx, text)
	if err != nil {
		return nil, Unavailable(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[text]; ok {
		return existing, nil
	}
	m.items[text] = vec

	return vec, nil
}

func (m *Memo) Dimension() int { return m.provider.Dimension() }

func (m *Memo) Name() string { return m.provider.Name() }

func (m *Memo) Model() string { return m.provider.Model() }

// Stats reports the number of cached texts and cache hits.
func (m *Memo) Stats() (size, hits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), m.hits
}
