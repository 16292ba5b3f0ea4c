package core

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable is returned by embedders that cannot produce a
// vector right now. Callers treat it as "no embedding", not as a failure.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Available(ctx context.Context) bool
	Dimensions() int
}
