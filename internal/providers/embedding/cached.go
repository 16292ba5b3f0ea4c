package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/sandevgo/tuskmem/internal/core"
)

// Cached memoizes successful embeddings by exact text in a bounded
// ristretto cache. Failures are never cached.
type Cached struct {
	next  core.Embedder
	cache *ristretto.Cache
}

func NewCached(next core.Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
		// Entries cost 1 so MaxCost counts texts.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Wait makes the entry visible to the next Get.
	c.cache.Set(text, vec, 1)
	c.cache.Wait()
	return vec, nil
}

func (c *Cached) Available(ctx context.Context) bool {
	return c.next.Available(ctx)
}

func (c *Cached) Dimensions() int {
	return c.next.Dimensions()
}

func (c *Cached) Close() error {
	c.cache.Close()
	return nil
}
