package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported embedding provider")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Provider is the narrow capability consumed from an embedding backend:
// texts in, one vector per text out, fixed dimensionality per model.
type Provider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector width for this provider's model.
	Dimensions() int

	// ModelID returns the model identifier used for embedding.
	ModelID() string

	// Close releases any resources held by the provider.
	Close() error
}

// Client layers indexing semantics over a Provider: fixed-size batching,
// per-text truncation, a shared counting semaphore bounding in-flight
// batches, bounded retries with jittered backoff, and an LRU result cache.
//
// EmbedBatch may return FEWER vectors than inputs: a batch that exhausts
// its retries is dropped and logged rather than failing the whole call.
// Callers must compare counts before trusting positional alignment.
type Client struct {
	provider  Provider
	batchSize int
	maxLen    int
	sem       *semaphore.Weighted
	retry     RetryConfig
	cache     *Cache
	log       *zap.SugaredLogger
}

// ClientOptions configures a Client. Zero values fall back to package
// defaults.
type ClientOptions struct {
	BatchSize     int
	MaxConcurrent int
	Retry         RetryConfig
	CacheSize     int
	Logger        *zap.SugaredLogger
}

// NewClient wraps a provider with batching, throttling, retry, and caching.
func NewClient(provider Provider, opts ClientOptions) *Client {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	retry := opts.Retry
	if retry.MaxRetries <= 0 {
		retry = DefaultRetryConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	return &Client{
		provider:  provider,
		batchSize: batchSize,
		maxLen:    MaxTextLength,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		retry:     retry,
		cache:     NewCache(cacheSize),
		log:       logger,
	}
}

// EmbedBatch embeds texts in provider-sized batches. The result preserves
// input order but may be shorter than the input when a batch is dropped
// after exhausting its retries; the caller owns the count check.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	prepared := make([]string, len(texts))
	for i, text := range texts {
		prepared[i] = truncate(text, c.maxLen)
	}

	results := make([][]float32, len(prepared))
	var misses []int
	for i, text := range prepared {
		if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
			results[i] = vec
			continue
		}
		misses = append(misses, i)
	}

	for start := 0; start < len(misses); start += c.batchSize {
		end := start + c.batchSize
		if end > len(misses) {
			end = len(misses)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		indices := misses[start:end]
		batch := make([]string, len(indices))
		for j, idx := range indices {
			batch[j] = prepared[idx]
		}

		vectors, err := c.embedOnce(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Dropped batch: its texts contribute no embeddings.
			c.log.Warnw("embedding batch dropped after retries",
				"batch_size", len(batch), "error", err)
			continue
		}
		if len(vectors) != len(batch) {
			c.log.Warnw("embedding batch returned unexpected count",
				"want", len(batch), "got", len(vectors))
			continue
		}

		for j, idx := range indices {
			results[idx] = vectors[j]
			c.cache.Set(c.cacheKey(prepared[idx]), vectors[j])
		}
	}

	// Compact out dropped positions, preserving order.
	out := make([][]float32, 0, len(results))
	for _, vec := range results {
		if vec != nil {
			out = append(out, vec)
		}
	}
	return out, nil
}

// EmbedQuery embeds a single query text through the same provider used for
// indexing, so query and chunk vectors share one space. Unlike EmbedBatch,
// failure is returned to the caller: search cannot proceed without it.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	text = truncate(text, c.maxLen)

	if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
		return vec, nil
	}

	vectors, err := c.embedOnce(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", ErrProviderFailed, len(vectors))
	}

	c.cache.Set(c.cacheKey(text), vectors[0])
	return vectors[0], nil
}

// embedOnce sends one batch through the semaphore with retry.
func (c *Client) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	return retryWithBackoff(ctx, c.retry, func() ([][]float32, error) {
		return c.provider.Embed(ctx, batch)
	})
}

// Dimensions returns the provider's fixed vector width.
func (c *Client) Dimensions() int {
	return c.provider.Dimensions()
}

// ModelID returns the provider's model identifier.
func (c *Client) ModelID() string {
	return c.provider.ModelID()
}

// Close releases the underlying provider.
func (c *Client) Close() error {
	return c.provider.Close()
}

func (c *Client) cacheKey(text string) string {
	return ComputeHash(c.provider.ModelID() + "\x00" + text)
}

// truncate caps a text at maxLen bytes before sending to the provider.
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen]
}

// Cache provides in-memory LRU caching of embedding vectors by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector so caller mutations cannot
// pollute the cache.
func (c *Cache) Get(key string) ([]float32, bool) {
	vec, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector, evicting the least recently used entry at capacity.
func (c *Cache) Set(key string, vec []float32) {
	c.cache.Add(key, vec)
}

// Size returns the current number of cached vectors.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 hex digest of text for cache keys.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
