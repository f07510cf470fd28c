package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/scenedex/scenedex/pkg/types"
)

// SearchChunks ranks the tenant's chunks by cosine similarity to the query
// vector. Rows are scanned newest generation first and deduplicated per
// (file_path, chunk_index), so stale generations left behind by a failed
// cleanup never shadow fresh content.
func (s *SQLiteStore) SearchChunks(ctx context.Context, tenant types.Tenant, queryVector []float32, limit int, category string) ([]ChunkHit, error) {
	if limit <= 0 {
		return []ChunkHit{}, nil
	}

	// Use optimized SQL-based scoring when sqlite-vec is available
	if VectorExtensionAvailable {
		return searchChunksOptimized(ctx, s.db, tenant, queryVector, limit, category)
	}
	// Fall back to Go-based computation for purego builds
	return searchChunksFallback(ctx, s.db, tenant, queryVector, limit, category)
}

// searchChunksOptimized scores rows with the sqlite-vec extension.
// Note: vec_distance_cosine returns distance (lower is better); we convert
// to similarity (1 - distance) to keep one score convention across builds.
func searchChunksOptimized(ctx context.Context, db *sql.DB, tenant types.Tenant, queryVector []float32, limit int, category string) ([]ChunkHit, error) {
	queryVectorBlob := serializeVector(queryVector)

	query := `
		SELECT file_path, chunk_index, content, start_line, end_line, category,
		       1.0 - vec_distance_cosine(embedding, ?) AS similarity
		FROM chunks
		WHERE user_id = ? AND project_id = ? AND embedding IS NOT NULL
	`
	args := []interface{}{queryVectorBlob, tenant.UserID, tenant.ProjectID}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	// Newest generation first so the dedup below keeps the latest row
	query += " ORDER BY indexed_at DESC, id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]ChunkHit, 0, limit)
	seen := make(map[chunkKey]struct{})
	for rows.Next() {
		var hit ChunkHit
		if err := rows.Scan(
			&hit.FilePath, &hit.ChunkIndex, &hit.Content,
			&hit.StartLine, &hit.EndLine, &hit.Category, &hit.Similarity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		key := chunkKey{path: hit.FilePath, index: hit.ChunkIndex}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortHits(hits)
	return topHits(hits, limit), nil
}

// searchChunksFallback computes cosine similarity in Go.
// This is used when the sqlite-vec extension is not available (purego builds).
func searchChunksFallback(ctx context.Context, db *sql.DB, tenant types.Tenant, queryVector []float32, limit int, category string) ([]ChunkHit, error) {
	query := `
		SELECT file_path, chunk_index, content, start_line, end_line, category, embedding
		FROM chunks
		WHERE user_id = ? AND project_id = ? AND embedding IS NOT NULL
	`
	args := []interface{}{tenant.UserID, tenant.ProjectID}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY indexed_at DESC, id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]ChunkHit, 0, limit)
	seen := make(map[chunkKey]struct{})
	for rows.Next() {
		var hit ChunkHit
		var vectorBlob []byte
		if err := rows.Scan(
			&hit.FilePath, &hit.ChunkIndex, &hit.Content,
			&hit.StartLine, &hit.EndLine, &hit.Category, &vectorBlob,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		key := chunkKey{path: hit.FilePath, index: hit.ChunkIndex}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}
		hit.Similarity = cosineSimilarity(queryVector, vector)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortHits(hits)
	return topHits(hits, limit), nil
}

// chunkKey identifies a logical chunk across generations
type chunkKey struct {
	path  string
	index int
}

// sortHits orders hits by similarity (descending) with a path and index
// tie-break so equal scores rank deterministically.
func sortHits(hits []ChunkHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].FilePath != hits[j].FilePath {
			return hits[i].FilePath < hits[j].FilePath
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})
}

// topHits returns the first limit hits
func topHits(hits []ChunkHit, limit int) []ChunkHit {
	if limit > len(hits) {
		limit = len(hits)
	}
	return hits[:limit]
}

// serializeVector converts a float32 slice to a byte blob (little-endian).
// Empty vectors serialize to nil so the column stores NULL.
func serializeVector(vector []float32) []byte {
	if len(vector) == 0 {
		return nil
	}
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
