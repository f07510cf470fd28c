package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider(t *testing.T) {
	provider := NewLocalProvider(0)
	defer provider.Close()

	ctx := context.Background()

	t.Run("provider metadata", func(t *testing.T) {
		assert.Equal(t, LocalDimension, provider.Dimensions())
		assert.NotEmpty(t, provider.ModelID())
	})

	t.Run("deterministic vectors", func(t *testing.T) {
		first, err := provider.Embed(ctx, []string{"extends CharacterBody2D"})
		require.NoError(t, err)
		second, err := provider.Embed(ctx, []string{"extends CharacterBody2D"})
		require.NoError(t, err)

		assert.Equal(t, first, second, "identical text must map to identical vectors")
	})

	t.Run("distinct texts diverge", func(t *testing.T) {
		vectors, err := provider.Embed(ctx, []string{"func _ready():", "func _process(delta):"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)

		assert.NotEqual(t, vectors[0], vectors[1])
	})

	t.Run("values bounded", func(t *testing.T) {
		vectors, err := provider.Embed(ctx, []string{"signal health_changed(value)"})
		require.NoError(t, err)
		require.Len(t, vectors, 1)
		require.Len(t, vectors[0], LocalDimension)

		for i, v := range vectors[0] {
			assert.GreaterOrEqual(t, v, float32(-1.0), "component %d out of range", i)
			assert.LessOrEqual(t, v, float32(1.0), "component %d out of range", i)
		}
	})

	t.Run("dimension override", func(t *testing.T) {
		small := NewLocalProvider(16)
		vectors, err := small.Embed(ctx, []string{"test"})
		require.NoError(t, err)
		require.Len(t, vectors, 1)
		assert.Len(t, vectors[0], 16)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := provider.Embed(ctx, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := provider.Embed(cancelled, []string{"test"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOllamaProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("successful batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/embed", r.URL.Path)

			var req ollamaEmbedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			require.Len(t, req.Input, 2)

			embeddings := make([][]float32, len(req.Input))
			for i := range embeddings {
				embeddings[i] = []float32{float32(i), 0.5}
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: embeddings}))
		}))
		defer server.Close()

		provider := NewOllamaProvider(server.URL, "", 2)
		defer provider.Close()

		vectors, err := provider.Embed(ctx, []string{"node Player", "node Enemy"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{0, 0.5}, vectors[0])
		assert.Equal(t, []float32{1, 0.5}, vectors[1])
	})

	t.Run("count mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := ollamaEmbedResponse{Embeddings: [][]float32{{0.1}}}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		provider := NewOllamaProvider(server.URL, "", 0)
		defer provider.Close()

		_, err := provider.Embed(ctx, []string{"one", "two"})
		assert.ErrorIs(t, err, ErrProviderFailed)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		provider := NewOllamaProvider(server.URL, "", 0)
		defer provider.Close()

		_, err := provider.Embed(ctx, []string{"one"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("empty batch", func(t *testing.T) {
		provider := NewOllamaProvider("http://localhost:11434", "", 0)
		defer provider.Close()

		_, err := provider.Embed(ctx, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("defaults", func(t *testing.T) {
		provider := NewOllamaProvider("", "", 0)
		defer provider.Close()

		assert.Equal(t, DefaultOllamaModel, provider.ModelID())
		assert.Equal(t, OllamaDimension, provider.Dimensions())
	})
}

func TestOpenAIProvider(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewOpenAIProvider("", "", "", 0)
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("provider metadata", func(t *testing.T) {
		provider, err := NewOpenAIProvider("test-key", "", "", 0)
		require.NoError(t, err)
		defer provider.Close()

		assert.Equal(t, DefaultOpenAIModel, provider.ModelID())
		assert.Equal(t, OpenAIDimension, provider.Dimensions())
	})

	t.Run("successful batch via base url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req struct {
				Input []string `json:"input"`
				Model string   `json:"model"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Input, 2)

			resp := map[string]any{
				"object": "list",
				"model":  req.Model,
				"data": []map[string]any{
					{"object": "embedding", "index": 0, "embedding": []float32{0.1, 0.2}},
					{"object": "embedding", "index": 1, "embedding": []float32{0.3, 0.4}},
				},
				"usage": map[string]int{"prompt_tokens": 4, "total_tokens": 4},
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
		defer server.Close()

		provider, err := NewOpenAIProvider("test-key", server.URL, "", 2)
		require.NoError(t, err)
		defer provider.Close()

		vectors, err := provider.Embed(context.Background(), []string{"player scene", "enemy scene"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
		assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
	})

	t.Run("count mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := map[string]any{
				"object": "list",
				"model":  "text-embedding-3-small",
				"data": []map[string]any{
					{"object": "embedding", "index": 0, "embedding": []float32{0.1}},
				},
				"usage": map[string]int{"prompt_tokens": 2, "total_tokens": 2},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		provider, err := NewOpenAIProvider("test-key", server.URL, "", 0)
		require.NoError(t, err)
		defer provider.Close()

		_, err = provider.Embed(context.Background(), []string{"one", "two"})
		assert.True(t, errors.Is(err, ErrProviderFailed))
	})

	t.Run("empty batch", func(t *testing.T) {
		provider, err := NewOpenAIProvider("test-key", "", "", 0)
		require.NoError(t, err)
		defer provider.Close()

		_, err = provider.Embed(context.Background(), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
