package faq

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const testDimension = 256

// bagEmbedder hashes each token into a fixed slot so equal texts get equal
// vectors and disjoint texts are orthogonal unless slots collide.
type bagEmbedder struct {
	calls atomic.Int64
	fn    func(ctx context.Context, text string) ([]float32, error)
}

func (b *bagEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	b.calls.Add(1)
	if b.fn != nil {
		return b.fn(ctx, text)
	}
	return bagOfWords(text), nil
}

func (b *bagEmbedder) Model() string { return "bag-test" }

func bagOfWords(text string) []float32 {
	vec := make([]float32, testDimension)
	for _, tok := range strings.Fields(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%testDimension]++
	}
	return vec
}

type mapCache struct {
	mu       sync.Mutex
	items    map[string]string
	computes int
	clears   int
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]string)}
}

func (c *mapCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (string, error) {
	c.mu.Lock()
	if v, ok := c.items[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.computes++
	c.mu.Unlock()

	v, err := compute(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.items[key] = v
	c.mu.Unlock()
	return v, nil
}

func (c *mapCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]string)
	c.clears++
	return nil
}

type staticSource struct {
	records []Record
	err     error
}

func (s *staticSource) LoadRecords(context.Context) ([]Record, error) {
	return s.records, s.err
}

type captureRecorder struct {
	mu    sync.Mutex
	turns []Turn
}

func (r *captureRecorder) Record(_ context.Context, turn Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

func (r *captureRecorder) all() []Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

type memoryArchive struct {
	mu      sync.Mutex
	vectors map[string][]float32
	saves   int
}

func (a *memoryArchive) LoadEmbeddings(_ context.Context, model string, hashes []string) (map[string][]float32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]float32)
	for _, h := range hashes {
		if v, ok := a.vectors[model+":"+h]; ok {
			out[h] = v
		}
	}
	return out, nil
}

func (a *memoryArchive) SaveEmbeddings(_ context.Context, model string, vectors map[string][]float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.vectors == nil {
		a.vectors = make(map[string][]float32)
	}
	for h, v := range vectors {
		a.vectors[model+":"+h] = v
	}
	a.saves++
	return nil
}

var errEmbedDown = errors.New("embedder down")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}
