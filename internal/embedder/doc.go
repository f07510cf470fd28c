// Package embedder generates vector embeddings for text chunks through
// pluggable providers.
//
// A Provider turns a batch of texts into one vector per text. The Client
// wraps a provider with the semantics indexing needs: fixed-size batching,
// per-text truncation, bounded concurrency, retries with jittered backoff,
// and an LRU cache keyed by content hash.
//
// # Basic Usage
//
//	client, err := embedder.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	vectors, err := client.EmbedBatch(ctx, texts)
//
// # Batch Semantics
//
// EmbedBatch splits texts into provider-sized batches and embeds them in
// order. A batch that still fails after its retries is dropped rather than
// failing the whole call, so the result may hold FEWER vectors than there
// were inputs:
//
//	vectors, err := client.EmbedBatch(ctx, texts)
//	if err != nil {
//	    return err // context cancelled
//	}
//	if len(vectors) != len(texts) {
//	    // some batch was dropped; do not trust positional alignment
//	}
//
// EmbedQuery is different: a query embedding is load-bearing for search,
// so its failure is returned to the caller.
//
// # Provider Selection
//
// The factory picks a provider from configuration:
//
//	openai  OpenAI embeddings API (needs OPENAI_API_KEY)
//	ollama  local Ollama instance (/api/embed)
//	local   deterministic offline vectors, for tests and air-gapped runs
//
// All providers expose fixed dimensionality via Dimensions; query and
// chunk vectors always come from the same provider so they share one
// vector space.
//
// # Caching
//
// Vectors are cached in-memory under SHA-256(model + text), so the same
// text re-indexed under the same model never hits the provider twice.
// The cache is LRU-bounded; Get returns a copy, so callers may mutate
// results freely.
package embedder
