package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/storage"
	"github.com/scenedex/scenedex/pkg/types"
)

const (
	// DefaultLimit is used when a request does not set a result limit.
	DefaultLimit = 10
	// MaxLimit caps the number of similarity results per request.
	MaxLimit = 100
	// DefaultMaxDepth bounds graph traversals unless the caller asks
	// for a different depth.
	DefaultMaxDepth = 2
	// DefaultCentralK is the ranking size when top_k is not given.
	DefaultCentralK = 10
	// DefaultCacheTTL is how long a cached query response stays valid.
	DefaultCacheTTL = 1 * time.Hour

	queryCacheSize = 1000
)

// SearchRequest contains parameters for a search operation.
type SearchRequest struct {
	Query     string
	Limit     int
	WithGraph bool
	Category  string
	UseCache  bool
	CacheTTL  time.Duration
}

// QueryEmbedder is the slice of the embedding client the searcher needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// cacheEntry is a cached search response with its expiration time.
type cacheEntry struct {
	response  *types.SearchResponse
	expiresAt time.Time
}

// Searcher serves similarity queries enriched with graph context.
type Searcher struct {
	store   storage.Store
	embed   QueryEmbedder
	graphs  *graphRegistry
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex

	defaultLimit int
	maxDepth     int
	cacheTTL     time.Duration
	log          *zap.SugaredLogger
}

// Options tunes a Searcher. Zero values use package defaults.
type Options struct {
	DefaultLimit    int                // result count when a request sets none (default: DefaultLimit)
	MaxDepth        int                // traversal bound for search graph context (default: DefaultMaxDepth)
	CacheTTL        time.Duration      // query response lifetime (default: DefaultCacheTTL)
	RegistryTenants int                // resident tenant graph snapshots (default: registrySize)
	RegistryTTL     time.Duration      // tenant graph snapshot lifetime (default: registryTTL)
	Logger          *zap.SugaredLogger // default: no-op logger
}

// NewSearcher creates a Searcher over the given store and embedding client.
func NewSearcher(store storage.Store, embed QueryEmbedder, opts Options) *Searcher {
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cache, err := lru.New[[32]byte, *cacheEntry](queryCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(fmt.Sprintf("create query cache: %v", err))
	}

	return &Searcher{
		store:        store,
		embed:        embed,
		graphs:       newGraphRegistry(store, opts.RegistryTenants, opts.RegistryTTL),
		cache:        cache,
		defaultLimit: limit,
		maxDepth:     depth,
		cacheTTL:     ttl,
		log:          log,
	}
}

// Search embeds the query, runs tenant-scoped similarity search, and when
// requested attaches graph context: per-hit connected files plus the
// tenant's most central files.
func (s *Searcher) Search(ctx context.Context, tenant types.Tenant, req SearchRequest) (*types.SearchResponse, error) {
	start := time.Now()

	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached := s.checkCache(tenant, req); cached != nil {
			cached.CacheHit = true
			cached.Elapsed = time.Since(start)
			s.log.Debugw("search served from cache", "tenant", tenant.Key(), "results", len(cached.Results))
			return cached, nil
		}
	}

	vector, err := s.embed.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.SearchChunks(ctx, tenant, vector, req.Limit, req.Category)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	resp := &types.SearchResponse{
		Query:   req.Query,
		Results: make([]types.SearchResult, len(hits)),
	}
	for i, h := range hits {
		resp.Results[i] = types.SearchResult{
			Rank:       i + 1,
			FilePath:   h.FilePath,
			ChunkIndex: h.ChunkIndex,
			Content:    h.Content,
			StartLine:  h.StartLine,
			EndLine:    h.EndLine,
			Similarity: h.Similarity,
			Category:   types.FileCategory(h.Category),
		}
	}

	if req.WithGraph {
		if err := s.attachGraphContext(ctx, tenant, req, resp); err != nil {
			return nil, err
		}
	}

	resp.Elapsed = time.Since(start)

	if req.UseCache && len(resp.Results) > 0 {
		s.storeInCache(tenant, req, resp)
	}

	s.log.Debugw("search complete",
		"tenant", tenant.Key(),
		"results", len(resp.Results),
		"with_graph", req.WithGraph,
		"elapsed", resp.Elapsed)
	return resp, nil
}

// attachGraphContext adds connected files for each distinct hit and the
// tenant-wide centrality ranking. Hits with no graph neighbors are left
// out of the connections map.
func (s *Searcher) attachGraphContext(ctx context.Context, tenant types.Tenant, req SearchRequest, resp *types.SearchResponse) error {
	g, err := s.graphs.snapshot(ctx, tenant)
	if err != nil {
		return err
	}

	connections := make(map[string]types.ConnectionSet)
	seen := make(map[string]struct{}, len(resp.Results))
	for _, r := range resp.Results {
		if _, dup := seen[r.FilePath]; dup {
			continue
		}
		seen[r.FilePath] = struct{}{}

		if set := g.connections(r.FilePath, s.maxDepth); len(set) > 0 {
			connections[r.FilePath] = set
		}
	}
	if len(connections) > 0 {
		resp.Connections = connections
	}
	resp.CentralFiles = g.centralFiles(req.Limit)
	return nil
}

// Connections returns the files reachable from path within maxDepth hops,
// grouped by traversal label. A path with no node in the tenant graph
// reports storage.ErrNotFound.
func (s *Searcher) Connections(ctx context.Context, tenant types.Tenant, path string, maxDepth int) (types.ConnectionSet, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, types.ErrMissingFilePath
	}
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}

	g, err := s.graphs.snapshot(ctx, tenant)
	if err != nil {
		return nil, err
	}

	set := g.connections(path, maxDepth)
	if set == nil {
		return nil, fmt.Errorf("file %q: %w", path, storage.ErrNotFound)
	}
	return set, nil
}

// CentralFiles ranks the tenant's files by blended centrality and returns
// the topK highest scored.
func (s *Searcher) CentralFiles(ctx context.Context, tenant types.Tenant, topK int) ([]types.CentralFile, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultCentralK
	}

	g, err := s.graphs.snapshot(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return g.centralFiles(topK), nil
}

// Invalidate drops cached state after a tenant's index changed. The graph
// snapshot is evicted per tenant; the query cache cannot be filtered by
// tenant, so it is purged whole. Invalidation only happens on writes, so
// the full purge is acceptable.
func (s *Searcher) Invalidate(tenant types.Tenant) {
	s.graphs.invalidate(tenant)

	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// validateRequest checks the request and fills in defaults.
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return types.ErrEmptyQuery
	}

	if !types.ValidCategoryFilter(req.Category) {
		return fmt.Errorf("%q: %w", req.Category, types.ErrInvalidCategory)
	}

	if req.Limit <= 0 {
		req.Limit = s.defaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = s.cacheTTL
	}

	return nil
}

// checkCache returns a copy of a live cached response, or nil on miss.
func (s *Searcher) checkCache(tenant types.Tenant, req SearchRequest) *types.SearchResponse {
	hash := computeQueryHash(tenant, req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}

	// Copy while still holding the read lock so the entry cannot change
	// mid-copy.
	response := copyResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

// storeInCache saves a copy of the response under the request's hash.
func (s *Searcher) storeInCache(tenant types.Tenant, req SearchRequest, resp *types.SearchResponse) {
	entry := &cacheEntry{
		response:  copyResponse(resp),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(tenant, req), entry)
	s.cacheMu.Unlock()
}

// copyResponse deep-copies a response so cached entries are isolated from
// caller mutation.
func copyResponse(src *types.SearchResponse) *types.SearchResponse {
	if src == nil {
		return nil
	}

	dst := &types.SearchResponse{
		Query:   src.Query,
		Elapsed: src.Elapsed,
	}

	if src.Results != nil {
		dst.Results = make([]types.SearchResult, len(src.Results))
		copy(dst.Results, src.Results)
	}

	if src.Connections != nil {
		dst.Connections = make(map[string]types.ConnectionSet, len(src.Connections))
		for path, set := range src.Connections {
			setCopy := make(types.ConnectionSet, len(set))
			for label, files := range set {
				setCopy[label] = append([]string(nil), files...)
			}
			dst.Connections[path] = setCopy
		}
	}

	if src.CentralFiles != nil {
		dst.CentralFiles = make([]types.CentralFile, len(src.CentralFiles))
		copy(dst.CentralFiles, src.CentralFiles)
	}

	return dst
}

// computeQueryHash builds a deterministic cache key for a request.
func computeQueryHash(tenant types.Tenant, req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(tenant.Key())
	data.WriteString("|")
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(strconv.Itoa(req.Limit))
	data.WriteString("|")
	data.WriteString(req.Category)
	data.WriteString("|")
	data.WriteString(strconv.FormatBool(req.WithGraph))

	return sha256.Sum256([]byte(data.String()))
}
