// Package embedding defines the text embedding capability the matchers
// depend on, together with its lifecycle helpers.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when the backing model cannot be loaded or
// does not respond. It is fatal for every scoring operation.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Vector is a fixed-length embedding.
type Vector []float32

// Provider converts text into vectors of a fixed dimensionality. Identical
// text must produce identical vectors for a fixed model.
type Provider interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dimension() int
	Name() string
	Model() string
}

// Unavailable wraps err so that errors.Is(err, ErrModelUnavailable) holds.
// Context cancellation is returned as is.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrModelUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
}
