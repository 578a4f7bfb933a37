package embedder

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

// LexicalEmbedder avoids network calls by hashing word and character
// trigram features into a fixed size vector.
type LexicalEmbedder struct {
	dim int
}

// NewLexicalEmbedder constructs the embedder.
func NewLexicalEmbedder(dim int) *LexicalEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &LexicalEmbedder{dim: dim}
}

// Embed returns an L2 normalized feature vector.
func (e *LexicalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, errors.New("embedding input cannot be empty")
	}
	acc := make([]float64, e.dim)
	for _, w := range words {
		e.add(acc, "w:"+w, wordWeight)
		padded := []rune("#" + w + "#")
		for i := 0; i+3 <= len(padded); i++ {
			e.add(acc, "t:"+string(padded[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vector := make([]float32, e.dim)
	if norm == 0 {
		return vector, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vector[i] = float32(v / norm)
	}
	return vector, nil
}

// add uses the top bit of the hash as the feature sign so collisions
// cancel out on average.
func (e *LexicalEmbedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

// Model identifies the feature space.
func (e *LexicalEmbedder) Model() string {
	return fmt.Sprintf("lexical-fnv64-%d", e.dim)
}

var _ faq.Embedder = (*LexicalEmbedder)(nil)
