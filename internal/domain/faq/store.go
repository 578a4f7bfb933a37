package faq

import "context"

// ComputeFunc produces a reply for a cache miss.
type ComputeFunc func(ctx context.Context) (string, error)

// ResponseCache memoizes replies by normalized query. Concurrent callers
// for the same key share a single compute call. Failed computations are
// never stored.
type ResponseCache interface {
	GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (string, error)
	Clear(ctx context.Context) error
}
