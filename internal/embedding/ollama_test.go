package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.oncora.assist/internal/tokens"
)

func testConfig(url string) *Config {
	cfg := DefaultConfig()
	cfg.OllamaURL = url
	cfg.VectorSize = 4
	return cfg
}

func newTestProvider(t *testing.T, url string) *OllamaProvider {
	t.Helper()
	provider, err := NewOllamaProvider(testConfig(url), &tokens.Counter{}, nil)
	require.NoError(t, err)
	return provider
}

func TestNewOllamaProviderInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		errorMsg string
	}{
		{
			name:     "empty ollama url",
			modify:   func(c *Config) { c.OllamaURL = "" },
			errorMsg: "ollama_url is required",
		},
		{
			name:     "empty dense model",
			modify:   func(c *Config) { c.DenseModel = "" },
			errorMsg: "dense_model is required",
		},
		{
			name:     "zero vector size",
			modify:   func(c *Config) { c.VectorSize = 0 },
			errorMsg: "vector_size must be at least 1",
		},
		{
			name:     "unknown sparse model",
			modify:   func(c *Config) { c.SparseModel = "splade" },
			errorMsg: "unknown sparse model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			_, err := NewOllamaProvider(cfg, &tokens.Counter{}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestEmbedDense(t *testing.T) {
	var gotReq ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3, 0.4}})
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	vec, err := provider.EmbedDense(context.Background(), "lung cancer symptoms")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)
	assert.Equal(t, "all-minilm", gotReq.Model)
	assert.Equal(t, "lung cancer symptoms", gotReq.Prompt)
}

func TestEmbedDenseEmptyInput(t *testing.T) {
	provider := newTestProvider(t, "http://localhost:1")

	_, err := provider.EmbedDense(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
	assert.Contains(t, err.Error(), "empty")
}

func TestEmbedDenseOversizedInput(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.MaxInputTokens = 3
	provider, err := NewOllamaProvider(cfg, &tokens.Counter{}, nil)
	require.NoError(t, err)

	_, err = provider.EmbedDense(context.Background(), strings.Repeat("term ", 10))
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestEmbedDenseDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2}})
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.EmbedDense(context.Background(), "lung cancer")
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
	assert.Contains(t, err.Error(), "expected 4")
}

func TestEmbedDenseServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.EmbedDense(context.Background(), "lung cancer")
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
	assert.Contains(t, err.Error(), "status 500")
}

func TestEmbedDenseUnreachable(t *testing.T) {
	provider := newTestProvider(t, "http://127.0.0.1:1")

	_, err := provider.EmbedDense(context.Background(), "lung cancer")
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
}

func TestEmbedSparse(t *testing.T) {
	provider := newTestProvider(t, "http://localhost:1")

	weights, err := provider.EmbedSparse(context.Background(), "lung cancer treatment")
	require.NoError(t, err)
	assert.Len(t, weights, 3)

	again, err := provider.EmbedSparse(context.Background(), "lung cancer treatment")
	require.NoError(t, err)
	assert.Equal(t, weights, again)
}

func TestEmbedSparseEmptyInput(t *testing.T) {
	provider := newTestProvider(t, "http://localhost:1")

	_, err := provider.EmbedSparse(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsEmbeddingError(err))
}
