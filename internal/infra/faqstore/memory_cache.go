package faqstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// DefaultComputeTimeout bounds a shared computation once it no longer
// follows the context of the caller that started it.
const DefaultComputeTimeout = 30 * time.Second

// MemoryCache keeps replies in process memory, bounded by size and TTL.
type MemoryCache struct {
	lru     *expirable.LRU[string, string]
	group   singleflight.Group
	timeout time.Duration

	mu         sync.RWMutex
	generation uint64
}

// NewMemoryCache constructs a cache. ttl <= 0 keeps entries until evicted.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 4096
	}
	return &MemoryCache{
		lru:     expirable.NewLRU[string, string](size, nil, ttl),
		timeout: DefaultComputeTimeout,
	}
}

// GetOrCompute implements faq.ResponseCache. Callers of the same key share
// one computation, and each stops waiting when its own context ends.
func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, compute faq.ComputeFunc) (string, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	gen := c.currentGeneration()
	// callers joining after a Clear must not share a flight started before it
	flight := strconv.FormatUint(gen, 10) + ":" + key
	ch := c.group.DoChan(flight, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		fctx, cancel := detach(ctx, c.timeout)
		defer cancel()
		value, err := guarded(compute)(fctx)
		if err != nil {
			return "", err
		}
		c.mu.RLock()
		if c.generation == gen {
			c.lru.Add(key, value)
		}
		c.mu.RUnlock()
		return value, nil
	})
	return await(ctx, ch)
}

// Clear drops every entry.
func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	c.generation++
	c.lru.Purge()
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func (c *MemoryCache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

var _ faq.ResponseCache = (*MemoryCache)(nil)
