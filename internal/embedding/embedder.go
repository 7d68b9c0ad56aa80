// Package embedding turns text into vectors for similarity search.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Cached wraps an Embedder with an LRU cache keyed by text.
type Cached struct {
	inner Embedder
	cache *Cache
}

// WithCache returns e wrapped in a cache of the given capacity.
// A capacity below 1 returns e unchanged.
func WithCache(e Embedder, capacity int) Embedder {
	if capacity < 1 {
		return e
	}
	return &Cached{inner: e, cache: NewCache(capacity)}
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, v)
	return v, nil
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Cached) Dimensions() int { return c.inner.Dimensions() }

func (c *Cached) Close() error { return c.inner.Close() }
