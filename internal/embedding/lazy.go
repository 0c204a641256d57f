package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Loader builds a ready Provider. It is expected to be slow.
type Loader func(ctx context.Context) (Provider, error)

// Lazy loads the wrapped provider on first use, at most once per process.
// A failed load is remembered: every later call returns ErrModelUnavailable.
// A load interrupted by the caller's context is not remembered; the next call
// tries again.
type Lazy struct {
	name   string
	model  string
	dim    int
	load   Loader
	logger *zap.Logger

	mu       sync.Mutex
	done     bool
	provider Provider
	err      error
}

// NewLazy returns a lazily initialised provider. name, model and dim describe
// the provider before it is loaded.
func NewLazy(name, model string, dim int, load Loader, logger *zap.Logger) *Lazy {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Lazy{
		name:   name,
		model:  model,
		dim:    dim,
		load:   load,
		logger: logger,
	}
}

// Warm performs the load eagerly. It is safe to call concurrently with Embed.
func (l *Lazy) Warm(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

func (l *Lazy) Embed(ctx context.Context, text string) (Vector, error) {
	provider, err := l.get(ctx)
	if err != nil {
		return nil, err
	}

	vec, err := provider.Embed(ctx, text)
	if err != nil {
		return nil, Unavailable(err)
	}
	return vec, nil
}

// Dimension reports the configured dimension without forcing a load.
func (l *Lazy) Dimension() int { return l.dim }

func (l *Lazy) Name() string { return l.name }

func (l *Lazy) Model() string { return l.model }

func (l *Lazy) get(ctx context.Context) (Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.provider, l.err
	}

	if l.load == nil {
		l.done = true
		l.err = fmt.Errorf("%w: no loader configured", ErrModelUnavailable)
		return nil, l.err
	}

	l.logger.Info("loading embedding model")

	provider, err := l.load(ctx)
	if err == nil && provider == nil {
		err = fmt.Errorf("loader returned no provider")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			l.logger.Warn("loading embedding model interrupted", zap.Error(err))
			return nil, ctxErr
		}

		l.done = true
		l.err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		l.logger.Error("loading embedding model failed", zap.Error(err))
		return nil, l.err
	}

	l.done = true
	l.provider = provider
	l.logger.Info("embedding model loaded", zap.Int("dimension", provider.Dimension()))

	return l.provider, nil
}
