package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/config"
	"github.com/scenedex/scenedex/internal/embedder"
	"github.com/scenedex/scenedex/internal/indexer"
	"github.com/scenedex/scenedex/internal/searcher"
	"github.com/scenedex/scenedex/internal/storage"
	"github.com/scenedex/scenedex/pkg/types"
)

// Service is the caller-facing facade over the engine. It owns the store,
// the embedding client, the indexer, and the searcher, and keeps them
// consistent: every write path invalidates the searcher's cached tenant
// state, so reads after a write observe the new index.
type Service struct {
	store    storage.Store
	embed    *embedder.Client
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	log      *zap.SugaredLogger
}

// The watcher drives its passes through the Service so watch-triggered
// writes invalidate caches like any other write.
var _ indexer.Sink = (*Service)(nil)

// New wires a Service from configuration. A nil logger disables logging.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Service, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	dbPath := cfg.DatabasePath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	store, err := storage.New(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	embed, err := embedder.New(cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	return &Service{
		store: store,
		embed: embed,
		indexer: indexer.New(store, embed, indexer.Options{
			Workers:     cfg.Workers,
			MaxFileSize: cfg.MaxFileSize,
			Logger:      log,
		}),
		searcher: searcher.NewSearcher(store, embed, searcher.Options{
			DefaultLimit:    cfg.DefaultLimit,
			MaxDepth:        cfg.MaxGraphDepth,
			CacheTTL:        cfg.QueryCacheTTL,
			RegistryTenants: cfg.GraphCacheTenants,
			RegistryTTL:     cfg.GraphCacheTTL,
			Logger:          log,
		}),
		log: log,
	}, nil
}

// Close releases the embedding provider and the store.
func (s *Service) Close() error {
	err := s.embed.Close()
	if serr := s.store.Close(); serr != nil && err == nil {
		err = serr
	}
	return err
}

// IndexFile indexes one file with caller-provided content. An empty hash
// is computed from the content; an unchanged stored hash short-circuits
// unless force is set.
func (s *Service) IndexFile(ctx context.Context, tenant types.Tenant, path, content, hash string, force bool) (storage.UpsertStatus, error) {
	status, err := s.indexer.IndexFile(ctx, tenant, path, content, hash, force)
	if err != nil {
		return "", err
	}
	if status != storage.UpsertUnchanged {
		s.searcher.Invalidate(tenant)
	}
	return status, nil
}

// IndexBatch indexes caller-provided files concurrently. Per-file failures
// are aggregated in the returned stats, never raised.
func (s *Service) IndexBatch(ctx context.Context, tenant types.Tenant, files []types.FileInput, force bool) (*types.IndexStats, error) {
	stats, err := s.indexer.IndexBatch(ctx, tenant, files, force)
	if stats != nil && stats.Indexed > 0 {
		s.searcher.Invalidate(tenant)
	}
	return stats, err
}

// IndexProject walks root, indexes every eligible file, and sweeps rows
// for files that no longer exist on disk.
func (s *Service) IndexProject(ctx context.Context, tenant types.Tenant, root string, force bool) (*types.IndexStats, error) {
	stats, err := s.indexer.IndexProject(ctx, tenant, root, force)
	if stats != nil && (stats.Indexed > 0 || stats.Removed > 0) {
		s.searcher.Invalidate(tenant)
	}
	return stats, err
}

// RemoveFile deletes a file's chunk rows and graph rows.
func (s *Service) RemoveFile(ctx context.Context, tenant types.Tenant, path string) error {
	if err := s.indexer.RemoveFile(ctx, tenant, path); err != nil {
		return err
	}
	s.searcher.Invalidate(tenant)
	return nil
}

// Search runs tenant-scoped similarity search, optionally enriched with
// graph context.
func (s *Service) Search(ctx context.Context, tenant types.Tenant, req searcher.SearchRequest) (*types.SearchResponse, error) {
	return s.searcher.Search(ctx, tenant, req)
}

// Connections returns the files reachable from path within maxDepth hops,
// grouped by traversal label.
func (s *Service) Connections(ctx context.Context, tenant types.Tenant, path string, maxDepth int) (types.ConnectionSet, error) {
	return s.searcher.Connections(ctx, tenant, path, maxDepth)
}

// CentralFiles ranks the tenant's files by blended centrality.
func (s *Service) CentralFiles(ctx context.Context, tenant types.Tenant, topK int) ([]types.CentralFile, error) {
	return s.searcher.CentralFiles(ctx, tenant, topK)
}

// Stats reports the tenant's indexed state together with the storage
// backend and embedding model serving it.
func (s *Service) Stats(ctx context.Context, tenant types.Tenant) (*types.ProjectStats, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	st, err := s.store.Stats(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	return &types.ProjectStats{
		FilesIndexed:   st.FilesIndexed,
		TotalChunks:    st.TotalChunks,
		GraphNodes:     st.GraphNodes,
		GraphEdges:     st.GraphEdges,
		LastIndexed:    st.LastIndexed,
		Storage:        storage.DriverName + "/" + storage.BuildMode,
		EmbeddingModel: s.embed.ModelID(),
	}, nil
}

// Clear removes everything stored for a tenant.
func (s *Service) Clear(ctx context.Context, tenant types.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, tenant); err != nil {
		return fmt.Errorf("clear tenant: %w", err)
	}
	s.searcher.Invalidate(tenant)
	s.log.Infow("tenant cleared", "tenant", tenant.Key())
	return nil
}

// Watch re-indexes the tenant's project as files change under root,
// blocking until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, tenant types.Tenant, root string) error {
	w, err := indexer.NewWatcher(s, tenant, root, s.log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	s.log.Infow("watching project", "tenant", tenant.Key(), "root", root)
	return w.Run(ctx)
}
