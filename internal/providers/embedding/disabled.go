package embedding

import (
	"context"

	"github.com/sandevgo/tuskmem/internal/core"
)

// Disabled never produces a vector. The service then stores memories
// without embeddings and retrieval falls back to effectiveness order.
type Disabled struct{}

func (Disabled) Embed(context.Context, string) ([]float32, error) {
	return nil, core.ErrEmbeddingUnavailable
}

func (Disabled) Available(context.Context) bool {
	return false
}

func (Disabled) Dimensions() int {
	return 0
}
