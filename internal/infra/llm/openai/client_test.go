package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_CreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"bonjour"}, req.Input)
		_, _ = w.Write([]byte(`{"model":"m","data":[{"index":0,"embedding":[0.5,0.25]}]}`))
	}))
	defer server.Close()

	client, err := NewClient("key", server.URL+"/v1/", time.Second)
	require.NoError(t, err)

	resp, err := client.CreateEmbedding(context.Background(), EmbeddingRequest{Model: "m", Input: []string{"bonjour"}})
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.25}, resp.Data[0].Embedding)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient("", server.URL, time.Second)
	require.NoError(t, err)

	_, err = client.CreateEmbedding(context.Background(), EmbeddingRequest{Model: "m", Input: []string{"x"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=503")
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("", "ftp://example", 0)
	require.Error(t, err)
}
