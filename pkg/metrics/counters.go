package metrics

import "sync/atomic"

// Counters tracks how chatbot replies were produced. Safe for concurrent use.
type Counters struct {
	requests       atomic.Int64
	cacheHits      atomic.Int64
	catalogHits    atomic.Int64
	defaultReplies atomic.Int64
	fallbacks      atomic.Int64
	failures       atomic.Int64
	timeouts       atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests       int64 `json:"requests"`
	CacheHits      int64 `json:"cacheHits"`
	CatalogHits    int64 `json:"catalogHits"`
	DefaultReplies int64 `json:"defaultReplies"`
	Fallbacks      int64 `json:"fallbacks"`
	Failures       int64 `json:"failures"`
	Timeouts       int64 `json:"timeouts"`
}

// NewCounters constructs zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncRequests()       { c.requests.Add(1) }
func (c *Counters) IncCacheHits()      { c.cacheHits.Add(1) }
func (c *Counters) IncCatalogHits()    { c.catalogHits.Add(1) }
func (c *Counters) IncDefaultReplies() { c.defaultReplies.Add(1) }
func (c *Counters) IncFallbacks()      { c.fallbacks.Add(1) }
func (c *Counters) IncFailures()       { c.failures.Add(1) }
func (c *Counters) IncTimeouts()       { c.timeouts.Add(1) }

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Requests:       c.requests.Load(),
		CacheHits:      c.cacheHits.Load(),
		CatalogHits:    c.catalogHits.Load(),
		DefaultReplies: c.defaultReplies.Load(),
		Fallbacks:      c.fallbacks.Load(),
		Failures:       c.failures.Load(),
		Timeouts:       c.timeouts.Load(),
	}
}

// IsZero reports whether no request has been counted yet.
func (s Snapshot) IsZero() bool {
	return s.Requests == 0
}
