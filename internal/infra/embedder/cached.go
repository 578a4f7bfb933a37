package embedder

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// CachedEmbedder memoizes vectors of a wrapped embedder. Returned vectors
// are shared and must not be modified.
type CachedEmbedder struct {
	inner faq.Embedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU bounded by size and ttl.
func NewCachedEmbedder(inner faq.Embedder, size int, ttl time.Duration) *CachedEmbedder {
	if size <= 0 {
		size = 1024
	}
	return &CachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed serves from the cache or delegates.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, vec)
	return vec, nil
}

// Model reports the wrapped model.
func (e *CachedEmbedder) Model() string {
	return e.inner.Model()
}

var _ faq.Embedder = (*CachedEmbedder)(nil)
