package indexer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scenedex/scenedex/internal/chunker"
	"github.com/scenedex/scenedex/internal/graph"
	"github.com/scenedex/scenedex/internal/storage"
	"github.com/scenedex/scenedex/pkg/types"
)

// ErrIndexingInProgress is returned when a project indexing run for the
// same tenant is already active.
var ErrIndexingInProgress = errors.New("indexing already in progress for this tenant")

// BatchEmbedder is the embedding capability the indexer consumes: chunk
// texts in, one vector per text out. The result may be shorter than the
// input when a batch is dropped; the indexer owns the count check.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer coordinates the indexing pipeline: chunk -> embed -> store,
// followed by graph extraction for the same file.
type Indexer struct {
	store     storage.Store
	embed     BatchEmbedder
	chunker   *chunker.Chunker
	extractor *graph.Extractor

	workers     int
	maxFileSize int64
	locks       *tenantLocks
	log         *zap.SugaredLogger
}

// Options tunes an Indexer. Zero values use package defaults.
type Options struct {
	Workers     int                // concurrent file workers (default: 2x GOMAXPROCS)
	MaxFileSize int64              // project walk size cap per file (default: DefaultMaxFileSize)
	Logger      *zap.SugaredLogger // default: no-op logger
}

// New creates an Indexer over the given store and embedding client.
func New(store storage.Store, embed BatchEmbedder, opts Options) *Indexer {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
	}
	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Indexer{
		store:       store,
		embed:       embed,
		chunker:     chunker.New(),
		extractor:   graph.New(),
		workers:     workers,
		maxFileSize: maxFileSize,
		locks:       newTenantLocks(),
		log:         logger,
	}
}

// IndexFile runs the pipeline for one file with caller-provided content.
// An empty hash is computed from the content. Unless force is set, a file
// whose stored hash already matches is skipped before any chunking or
// embedding work; skips report storage.UpsertUnchanged.
func (idx *Indexer) IndexFile(ctx context.Context, tenant types.Tenant, filePath, content, hash string, force bool) (storage.UpsertStatus, error) {
	if err := tenant.Validate(); err != nil {
		return "", err
	}
	if filePath == "" {
		return "", types.ErrMissingFilePath
	}
	if content == "" {
		idx.log.Debugw("empty file skipped", "tenant", tenant.Key(), "file", filePath)
		return storage.UpsertUnchanged, nil
	}
	if hash == "" {
		hash = types.HashContent(content)
	}

	if !force {
		stored, err := idx.store.FileHash(ctx, tenant, filePath)
		if err != nil {
			return "", fmt.Errorf("check stored hash: %w", err)
		}
		if stored != "" && stored == hash {
			idx.log.Debugw("file unchanged", "tenant", tenant.Key(), "file", filePath)
			return storage.UpsertUnchanged, nil
		}
	}

	chunks := idx.chunker.Chunk(filePath, content)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = embedText(filePath, chunk.Content)
	}

	embeddings, err := idx.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		// Partial batch results cannot be aligned with their chunks, so
		// nothing is inserted for this file.
		return "", fmt.Errorf("embedded %d of %d chunks: %w", len(embeddings), len(chunks), storage.ErrCountMismatch)
	}

	status, err := idx.store.UpsertFile(ctx, tenant, filePath, chunks, embeddings, hash, force)
	if err != nil {
		return "", fmt.Errorf("store chunks: %w", err)
	}
	if status == storage.UpsertUnchanged {
		return status, nil
	}

	nodes, edges := idx.extractor.Extract(tenant, filePath, content)
	if err := idx.store.ReplaceFileGraph(ctx, tenant, filePath, nodes, edges); err != nil {
		return "", fmt.Errorf("store graph: %w", err)
	}

	idx.log.Debugw("file indexed", "tenant", tenant.Key(), "file", filePath,
		"chunks", len(chunks), "nodes", len(nodes), "edges", len(edges))
	return status, nil
}

// IndexBatch indexes caller-provided files through a bounded worker pool.
// Per-file failures are counted and described in the returned stats, never
// propagated; only tenant validation and context cancellation abort a run.
func (idx *Indexer) IndexBatch(ctx context.Context, tenant types.Tenant, files []types.FileInput, force bool) (*types.IndexStats, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}

	var indexed, skipped, failed atomic.Int32
	var mu sync.Mutex
	var errs []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if file.Path == "" {
				skipped.Add(1)
				return nil
			}
			status, err := idx.IndexFile(gctx, tenant, file.Path, file.Content, file.Hash, force)
			switch {
			case err != nil:
				failed.Add(1)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("%s: %v", file.Path, err))
				mu.Unlock()
			case status == storage.UpsertUnchanged:
				skipped.Add(1)
			default:
				indexed.Add(1)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	stats := &types.IndexStats{
		Total:   len(files),
		Indexed: int(indexed.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
		Errors:  errs,
	}
	if waitErr != nil {
		return stats, waitErr
	}

	idx.log.Infow("batch indexing complete", "tenant", tenant.Key(),
		"total", stats.Total, "indexed", stats.Indexed,
		"skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

// IndexProject walks a project tree, indexes every eligible file, then
// sweeps stored rows for files no longer present on disk. Only one project
// run per tenant may be active at a time.
func (idx *Indexer) IndexProject(ctx context.Context, tenant types.Tenant, root string, force bool) (*types.IndexStats, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, errors.New("project root is required")
	}
	if !idx.locks.TryAcquire(tenant.Key()) {
		return nil, ErrIndexingInProgress
	}
	defer idx.locks.Release(tenant.Key())

	start := time.Now()
	walk, err := discoverFiles(root, idx.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("walk project: %w", err)
	}
	idx.log.Infow("project walk complete", "tenant", tenant.Key(),
		"root", root, "eligible", len(walk.files), "seen", walk.total)

	// Every eligible file is present for sweep purposes even if its
	// indexing later fails, so a bad pass never deletes good rows.
	present := make(map[string]struct{}, len(walk.files))
	for _, f := range walk.files {
		present[f.rel] = struct{}{}
	}

	var indexed, skipped, failed atomic.Int32
	var mu sync.Mutex
	var errs []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for _, f := range walk.files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, ok := readFileText(f.abs)
			if !ok {
				skipped.Add(1)
				return nil
			}
			status, err := idx.IndexFile(gctx, tenant, f.rel, content, "", force)
			switch {
			case err != nil:
				failed.Add(1)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("%s: %v", f.rel, err))
				mu.Unlock()
			case status == storage.UpsertUnchanged:
				skipped.Add(1)
			default:
				indexed.Add(1)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	stats := &types.IndexStats{
		Total:   walk.total,
		Indexed: int(indexed.Load()),
		Skipped: walk.skipped + int(skipped.Load()),
		Failed:  int(failed.Load()),
		Errors:  errs,
	}
	if waitErr != nil {
		return stats, waitErr
	}

	removed, err := idx.store.SweepMissing(ctx, tenant, present)
	if err != nil {
		idx.log.Warnw("chunk sweep failed", "tenant", tenant.Key(), "error", err)
		stats.Errors = append(stats.Errors, fmt.Sprintf("sweep: %v", err))
	}
	stats.Removed = removed
	if _, err := idx.store.SweepMissingGraph(ctx, tenant, present); err != nil {
		idx.log.Warnw("graph sweep failed", "tenant", tenant.Key(), "error", err)
		stats.Errors = append(stats.Errors, fmt.Sprintf("graph sweep: %v", err))
	}

	idx.log.Infow("project indexing complete", "tenant", tenant.Key(),
		"indexed", stats.Indexed, "skipped", stats.Skipped, "failed", stats.Failed,
		"removed", stats.Removed, "elapsed", time.Since(start))
	return stats, nil
}

// RemoveFile deletes a file's chunk rows and graph rows. Removing a file
// that was never indexed is a no-op.
func (idx *Indexer) RemoveFile(ctx context.Context, tenant types.Tenant, filePath string) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	if filePath == "" {
		return types.ErrMissingFilePath
	}
	if err := idx.store.RemoveFile(ctx, tenant, filePath); err != nil {
		return fmt.Errorf("remove chunks: %w", err)
	}
	if err := idx.store.RemoveFileGraph(ctx, tenant, filePath); err != nil {
		return fmt.Errorf("remove graph: %w", err)
	}
	idx.log.Debugw("file removed", "tenant", tenant.Key(), "file", filePath)
	return nil
}

// embedText frames chunk content with a filename header so retrieval can
// match file names as well as content. Query embeddings stay unframed.
func embedText(filePath, content string) string {
	return "File: " + path.Base(filePath) + "\n\n" + content
}
