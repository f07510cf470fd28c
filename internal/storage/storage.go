package storage

import (
	"context"
	"errors"
	"time"

	"github.com/scenedex/scenedex/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrCountMismatch is returned when chunks and embeddings differ in length
	ErrCountMismatch = errors.New("chunk and embedding counts differ")
)

// UpsertStatus reports what UpsertFile did with a file.
type UpsertStatus string

const (
	// UpsertUnchanged means the stored hash matched and nothing was written
	UpsertUnchanged UpsertStatus = "unchanged"
	// UpsertIndexed means the file's chunk rows were replaced
	UpsertIndexed UpsertStatus = "indexed"
)

// Store persists tenant-scoped chunk embeddings and the relationship graph.
type Store interface {
	// Chunk operations
	FileHash(ctx context.Context, tenant types.Tenant, path string) (string, error)
	UpsertFile(ctx context.Context, tenant types.Tenant, path string, chunks []types.TextChunk, embeddings [][]float32, hash string, force bool) (UpsertStatus, error)
	SearchChunks(ctx context.Context, tenant types.Tenant, queryVector []float32, limit int, category string) ([]ChunkHit, error)
	RemoveFile(ctx context.Context, tenant types.Tenant, path string) error
	SweepMissing(ctx context.Context, tenant types.Tenant, present map[string]struct{}) (int, error)
	ListFiles(ctx context.Context, tenant types.Tenant) ([]string, error)

	// Graph operations
	ReplaceFileGraph(ctx context.Context, tenant types.Tenant, path string, nodes []types.GraphNode, edges []types.GraphEdge) error
	RemoveFileGraph(ctx context.Context, tenant types.Tenant, path string) error
	SweepMissingGraph(ctx context.Context, tenant types.Tenant, present map[string]struct{}) (int, error)
	GraphForTenant(ctx context.Context, tenant types.Tenant) ([]types.GraphNode, []types.GraphEdge, error)
	NodesByFile(ctx context.Context, tenant types.Tenant, path string) ([]types.GraphNode, error)
	EdgesTouching(ctx context.Context, tenant types.Tenant, nodeID string) ([]types.GraphEdge, error)

	// Maintenance operations
	Stats(ctx context.Context, tenant types.Tenant) (*IndexStats, error)
	Clear(ctx context.Context, tenant types.Tenant) error
	Close() error
}

// ChunkHit is a scored chunk row returned by SearchChunks, already
// deduplicated to the latest indexed generation of its file.
type ChunkHit struct {
	FilePath   string
	ChunkIndex int
	Content    string
	StartLine  int
	EndLine    int
	Category   string
	Similarity float64
}

// IndexStats summarizes a tenant's stored index.
type IndexStats struct {
	FilesIndexed int
	TotalChunks  int
	GraphNodes   int
	GraphEdges   int
	LastIndexed  time.Time
}
