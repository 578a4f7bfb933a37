package embedder

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/llm/openai"
)

type stubClient struct {
	fn    func(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error)
	calls atomic.Int64
}

func (s *stubClient) CreateEmbedding(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

func vectorResponse(vec ...float32) openai.EmbeddingResponse {
	var resp openai.EmbeddingResponse
	resp.Data = append(resp.Data, struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}{Index: 0, Embedding: vec})
	return resp
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	client := &stubClient{fn: func(_ context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		require.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", req.Model)
		require.Equal(t, []string{"horaires"}, req.Input)
		return vectorResponse(0.1, 0.2, 0.3), nil
	}}
	e := NewOpenAIEmbedder(client, " paraphrase-multilingual-MiniLM-L12-v2 ", 0, nil)

	vec, err := e.Embed(context.Background(), "horaires")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	require.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", e.Model())

	_, err = e.Embed(context.Background(), "  ")
	require.Error(t, err)
	require.Equal(t, int64(1), client.calls.Load())
}

func TestOpenAIEmbedder_Errors(t *testing.T) {
	boom := errors.New("boom")
	client := &stubClient{fn: func(context.Context, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{}, boom
	}}
	e := NewOpenAIEmbedder(client, "m", 0, nil)
	_, err := e.Embed(context.Background(), "x")
	require.ErrorIs(t, err, boom)

	empty := &stubClient{fn: func(context.Context, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{}, nil
	}}
	_, err = NewOpenAIEmbedder(empty, "m", 0, nil).Embed(context.Background(), "x")
	require.Error(t, err)
}

func TestProbe_UsesEmbedder(t *testing.T) {
	dim, err := faq.ProbeEmbedder(context.Background(), NewLexicalEmbedder(64))
	require.NoError(t, err)
	require.Equal(t, 64, dim)

	client := &stubClient{fn: func(context.Context, openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
		return openai.EmbeddingResponse{}, errors.New("connection refused")
	}}
	_, err = faq.ProbeEmbedder(context.Background(), NewOpenAIEmbedder(client, "m", 0, nil))
	require.Error(t, err)
}

func TestClipByEstimate(t *testing.T) {
	short := "horaires d ouverture"
	require.Equal(t, short, clipByEstimate(short, 64))

	long := strings.Repeat("a", 100)
	require.Len(t, clipByEstimate(long, 10), 20)

	var nilClipper *tokenClipper
	require.Equal(t, long, nilClipper.Clip(long))
	require.Equal(t, long, newTokenClipper(0, nil).Clip(long))
}

func TestLexicalEmbedder(t *testing.T) {
	e := NewLexicalEmbedder(256)
	ctx := context.Background()

	a, err := e.Embed(ctx, "horaires ouverture magasin")
	require.NoError(t, err)
	again, err := e.Embed(ctx, "horaires ouverture magasin")
	require.NoError(t, err)
	require.Equal(t, a, again)
	require.Len(t, a, 256)
	require.InDelta(t, 1.0, faq.CosineSimilarity(a, a), 1e-6)

	near, err := e.Embed(ctx, "horaire ouverture")
	require.NoError(t, err)
	far, err := e.Embed(ctx, "paiement carte bancaire")
	require.NoError(t, err)
	require.Greater(t, faq.CosineSimilarity(a, near), faq.CosineSimilarity(a, far))

	_, err = e.Embed(ctx, "   ")
	require.Error(t, err)
	require.Equal(t, "lexical-fnv64-256", e.Model())
}

func TestCachedEmbedder(t *testing.T) {
	calls := atomic.Int64{}
	inner := &countingEmbedder{inner: NewLexicalEmbedder(32), calls: &calls}
	e := NewCachedEmbedder(inner, 8, time.Minute)

	first, err := e.Embed(context.Background(), "bonjour")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "bonjour")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(1), calls.Load())
	require.Equal(t, inner.Model(), e.Model())

	_, err = e.Embed(context.Background(), "")
	require.Error(t, err)
	_, err = e.Embed(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, int64(3), calls.Load())
}

type countingEmbedder struct {
	inner faq.Embedder
	calls *atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Model() string { return c.inner.Model() }
