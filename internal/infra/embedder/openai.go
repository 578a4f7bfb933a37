package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/llm/openai"
)

// EmbeddingClient is the subset of the OpenAI client the embedder needs.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder calls an OpenAI compatible embeddings API.
type OpenAIEmbedder struct {
	client  EmbeddingClient
	model   string
	clipper *tokenClipper
	logger  *slog.Logger
}

// NewOpenAIEmbedder constructs an embedder backed by the OpenAI client.
// maxTokens <= 0 disables input clipping.
func NewOpenAIEmbedder(client EmbeddingClient, model string, maxTokens int, logger *slog.Logger) *OpenAIEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "embedder.openai")
	return &OpenAIEmbedder{
		client:  client,
		model:   strings.TrimSpace(model),
		clipper: newTokenClipper(maxTokens, logger),
		logger:  logger,
	}
}

// Embed requests the vector for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("embedding input cannot be empty")
	}
	input := e.clipper.Clip(text)
	resp, err := e.client.CreateEmbedding(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{input},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response empty")
	}
	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)
	return vector, nil
}

// Model names the remote model.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

var _ faq.Embedder = (*OpenAIEmbedder)(nil)
