package faq

import (
	"time"

	"github.com/yanqian/faqbot/pkg/metrics"
)

// Source identifies how a reply was produced.
type Source string

const (
	// SourceCatalog is a confident FAQ match.
	SourceCatalog Source = "catalog"
	// SourceDefault is a canned greeting or closing.
	SourceDefault Source = "default"
	// SourceFallback is the static contact message.
	SourceFallback Source = "fallback"
	// SourceCache is a reply reused from the response cache.
	SourceCache Source = "cache"
	// SourceError is the apology returned after a failure.
	SourceError Source = "error"
)

// Record is a raw FAQ row as stored in the catalog source.
type Record struct {
	ID       int64    `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Entry is an immutable catalog item with its precomputed embedding.
type Entry struct {
	ID         int64
	Question   string
	Answer     string
	Keywords   []string
	Normalized string
	Embedding  []float32

	lexicon string
}

// MatchResult is the outcome of scanning the catalog for one query.
// Entry is nil when no entry reached the threshold.
type MatchResult struct {
	Entry *Entry
	Score float64
}

// Matched reports whether the result carries a catalog entry.
func (r MatchResult) Matched() bool {
	return r.Entry != nil
}

// Request is a single chatbot message.
type Request struct {
	SessionID string `json:"-"`
	Message   string `json:"message"`
}

// Reply is the chatbot answer. Answer is never empty.
type Reply struct {
	Answer string
	Source Source
	Score  float64
	Cached bool
	Err    error
}

// Turn is one exchange handed to the conversation log.
type Turn struct {
	SessionID   string    `json:"sessionId"`
	UserMessage string    `json:"userMessage"`
	BotResponse string    `json:"botResponse"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CatalogInfo describes the active catalog snapshot.
type CatalogInfo struct {
	Entries   int       `json:"entries"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	LoadedAt  time.Time `json:"loadedAt"`
}

// Stats is exposed for operators.
type Stats struct {
	Counters metrics.Snapshot `json:"counters"`
	Catalog  CatalogInfo      `json:"catalog"`
}
