package embedder

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const clipEncoding = "cl100k_base"

// tokenClipper trims inputs to a token budget. The encoding loads lazily;
// when it cannot be loaded a rune based estimate is used instead.
type tokenClipper struct {
	max    int
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func newTokenClipper(max int, logger *slog.Logger) *tokenClipper {
	return &tokenClipper{max: max, logger: logger}
}

func (c *tokenClipper) Clip(text string) string {
	if c == nil || c.max <= 0 {
		return text
	}
	// every token spans at least one byte
	if len(text) <= c.max {
		return text
	}
	c.once.Do(c.load)
	if c.enc == nil {
		return clipByEstimate(text, c.max)
	}
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= c.max {
		return text
	}
	return c.enc.Decode(tokens[:c.max])
}

func (c *tokenClipper) load() {
	enc, err := tiktoken.GetEncoding(clipEncoding)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("tiktoken encoding unavailable, clipping by estimate", "error", err)
		}
		return
	}
	c.enc = enc
}

// clipByEstimate keeps at most two runes per token of budget.
func clipByEstimate(text string, max int) string {
	if estimateTokens(text) <= max {
		return text
	}
	limit := max * 2
	count := 0
	for i := range text {
		if count == limit {
			return strings.TrimSpace(text[:i])
		}
		count++
	}
	return text
}

// estimateTokens provides a rough, upper-biased token count.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
