package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider configuration
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"

	// Default models
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultOllamaModel = "nomic-embed-text"

	// Dimensions
	OpenAIDimension = 1536
	OllamaDimension = 768
	LocalDimension  = 384

	// Batch limits
	DefaultBatchSize = 20
	MaxBatchSize     = 100

	// MaxTextLength caps a single text before it is sent to a provider
	MaxTextLength = 8000

	// Retry configuration
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 200 * time.Millisecond
	MaxBackoffDelay      = 30 * time.Second
	DefaultMaxConcurrent = 4

	// DefaultCacheSize bounds the embedding LRU cache
	DefaultCacheSize = 1000
)

// OpenAIProvider embeds through the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIProvider creates an OpenAI-backed provider. baseURL overrides
// the API endpoint for compatible gateways; empty model and dims fall back
// to text-embedding-3-small at 1536.
func NewOpenAIProvider(apiKey, baseURL, model string, dims int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrNoProviderEnabled)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dims <= 0 {
		dims = OpenAIDimension
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProviderFailed, len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (p *OpenAIProvider) Dimensions() int { return p.dims }

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Close() error { return nil }

// OllamaProvider embeds through a local Ollama instance's /api/embed
// endpoint.
type OllamaProvider struct {
	baseURL    string
	model      string
	dims       int
	httpClient *http.Client
}

// NewOllamaProvider creates a provider targeting the given Ollama instance.
func NewOllamaProvider(baseURL, model string, dims int) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if dims <= 0 {
		dims = OllamaDimension
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embed returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrProviderFailed, len(texts), len(result.Embeddings))
	}

	return result.Embeddings, nil
}

func (p *OllamaProvider) Dimensions() int { return p.dims }

func (p *OllamaProvider) ModelID() string { return p.model }

func (p *OllamaProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider produces deterministic pseudo-embeddings derived from the
// text's SHA-256 digest. It exists for tests and offline runs: identical
// texts always map to identical vectors, so similarity self-match and
// idempotence properties hold without a network dependency.
type LocalProvider struct {
	model string
	dims  int
}

// NewLocalProvider creates a deterministic offline provider.
func NewLocalProvider(dims int) *LocalProvider {
	if dims <= 0 {
		dims = LocalDimension
	}
	return &LocalProvider{model: "local-embeddings", dims: dims}
}

func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.vectorFor(text)
	}
	return out, nil
}

// vectorFor expands the text digest into dims values in [-1, 1].
func (p *LocalProvider) vectorFor(text string) []float32 {
	vec := make([]float32, p.dims)
	seed := sha256.Sum256([]byte(text))
	block := seed

	for i := 0; i < p.dims; i += 8 {
		for j := 0; j < 8 && i+j < p.dims; j++ {
			bits := binary.LittleEndian.Uint32(block[j*4 : j*4+4])
			vec[i+j] = float32(int32(bits)) / float32(1<<31)
		}
		block = sha256.Sum256(block[:])
	}
	return vec
}

func (p *LocalProvider) Dimensions() int { return p.dims }

func (p *LocalProvider) ModelID() string { return p.model }

func (p *LocalProvider) Close() error { return nil }
