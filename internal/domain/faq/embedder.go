package faq

import (
	"context"
	"errors"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

const probeText = "bonjour"

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// ProbeEmbedder checks the embedder answers before the service accepts
// traffic and returns the vector dimension.
func ProbeEmbedder(ctx context.Context, embedder Embedder) (int, error) {
	if embedder == nil {
		return 0, apperrors.Wrap(CodeEmbeddingUnavailable, "embedder not configured", nil)
	}
	vec, err := embedder.Embed(ctx, probeText)
	if err != nil {
		return 0, apperrors.Wrap(CodeEmbeddingUnavailable, "embedder probe failed", err)
	}
	if len(vec) == 0 {
		return 0, apperrors.Wrap(CodeEmbeddingUnavailable, "embedder probe failed", errors.New("empty vector"))
	}
	return len(vec), nil
}
