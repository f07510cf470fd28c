// Package storage provides SQLite-based persistence for indexed project data.
//
// The storage layer manages:
//   - Text chunks with inline vector embeddings
//   - File content hashes for incremental indexing
//   - Scene graph nodes and relationship edges
//   - Per-tenant isolation of all rows
//
// # Database Schema
//
// Tables:
//   - chunks: Chunk text, line ranges, category, and embedding blob
//   - graph_nodes: Graph nodes keyed by deterministic address hash
//   - graph_edges: Typed, weighted relationships between node IDs
//   - schema_version: Applied migration versions
//
// Every data row carries (user_id, project_id); all queries filter on the
// pair, so tenants never observe each other's data.
//
// # Basic Usage
//
//	store, err := storage.New("~/.scenedex/index.db", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	tenant := types.Tenant{UserID: "u1", ProjectID: "p1"}
//	status, err := store.UpsertFile(ctx, tenant, "scenes/main.tscn",
//	    chunks, embeddings, hash, false)
//
// # Incremental Updates
//
// UpsertFile compares the stored hash before writing:
//
//	status, err := store.UpsertFile(ctx, tenant, path, chunks, embeddings, hash, false)
//	if status == storage.UpsertUnchanged {
//	    // Same content hash, nothing was written
//	}
//
// Passing force bypasses the hash gate and always rewrites the rows.
// Re-indexing inserts a fresh generation of chunk rows and deletes the old
// generation best-effort; readers deduplicate to the newest generation, so
// a failed cleanup is invisible to search results.
//
// # Vector Search
//
//	hits, err := store.SearchChunks(ctx, tenant, queryVector, 10, "")
//	for _, hit := range hits {
//	    fmt.Printf("%s#%d: %.3f\n", hit.FilePath, hit.ChunkIndex, hit.Similarity)
//	}
//
// Scores are cosine similarity, higher is better. With the sqlite-vec
// extension (CGO build) distances are computed in SQL; the purego build
// computes them in Go from the stored blobs.
//
// # Graph Operations
//
// Each file owns the graph rows it produced. Replacing a file's graph is
// atomic:
//
//	err := store.ReplaceFileGraph(ctx, tenant, path, nodes, edges)
//
// Edges may reference node IDs with no matching node row. Because IDs are
// deterministic address hashes, such edges resolve by themselves once the
// referenced file is indexed.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (sqlite_vec tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Registers the sqlite-vec extension for fast vector scoring
//
//   - Requires a C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go Build (purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - Pure Go vector operations (slower)
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
//
// Both builds produce identical scores for identical data; only the
// computation site differs.
package storage
