package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/scenedex/scenedex/pkg/types"
)

// Graph operations
//
// Nodes and edges are keyed by deterministic address hashes, so re-indexing
// a file rewrites the same logical rows. Each file owns the rows it
// produced (file_path column); replacing a file's graph touches only those.

// ReplaceFileGraph atomically swaps the graph rows owned by a file.
func (s *SQLiteStore) ReplaceFileGraph(ctx context.Context, tenant types.Tenant, path string, nodes []types.GraphNode, edges []types.GraphEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	); err != nil {
		return fmt.Errorf("failed to delete stale edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM graph_nodes WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	); err != nil {
		return fmt.Errorf("failed to delete stale nodes: %w", err)
	}

	now := time.Now().UnixNano()

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO graph_nodes (user_id, project_id, id, kind, name, node_type,
		                         file_path, node_path, start_line, end_line, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, project_id, id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			node_type = excluded.node_type,
			file_path = excluded.file_path,
			node_path = excluded.node_path,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer func() { _ = nodeStmt.Close() }()

	for _, node := range nodes {
		if _, err := nodeStmt.ExecContext(ctx,
			tenant.UserID, tenant.ProjectID, node.ID, string(node.Kind), node.Name,
			node.NodeType, node.FilePath, node.NodePath, node.StartLine, node.EndLine, now,
		); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO graph_edges (user_id, project_id, src_id, dst_id, kind, strength,
		                         file_path, start_line, end_line, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, project_id, src_id, dst_id, kind) DO UPDATE SET
			strength = excluded.strength,
			file_path = excluded.file_path,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer func() { _ = edgeStmt.Close() }()

	for _, edge := range edges {
		if _, err := edgeStmt.ExecContext(ctx,
			tenant.UserID, tenant.ProjectID, edge.SrcID, edge.DstID, edge.Kind,
			edge.Strength, edge.FilePath, edge.StartLine, edge.EndLine, now,
		); err != nil {
			return fmt.Errorf("failed to insert edge %s->%s: %w", edge.SrcID, edge.DstID, err)
		}
	}

	return tx.Commit()
}

// RemoveFileGraph deletes all graph rows owned by a file.
func (s *SQLiteStore) RemoveFileGraph(ctx context.Context, tenant types.Tenant, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	); err != nil {
		return fmt.Errorf("failed to remove edges for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM graph_nodes WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	); err != nil {
		return fmt.Errorf("failed to remove nodes for %s: %w", path, err)
	}

	return tx.Commit()
}

// SweepMissingGraph deletes graph rows owned by files absent from the
// present set and returns how many files were swept.
func (s *SQLiteStore) SweepMissingGraph(ctx context.Context, tenant types.Tenant, present map[string]struct{}) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT file_path FROM graph_nodes WHERE user_id = ? AND project_id = ?`,
		tenant.UserID, tenant.ProjectID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to list graph files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, err
		}
		if _, ok := present[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		if err := s.RemoveFileGraph(ctx, tenant, path); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// GraphForTenant loads the tenant's entire graph in a stable order.
func (s *SQLiteStore) GraphForTenant(ctx context.Context, tenant types.Tenant) ([]types.GraphNode, []types.GraphEdge, error) {
	nodes, err := queryNodes(ctx, s.db, `
		SELECT id, kind, name, node_type, file_path, node_path, start_line, end_line, updated_at
		FROM graph_nodes
		WHERE user_id = ? AND project_id = ?
		ORDER BY file_path, node_path, id
	`, tenant.UserID, tenant.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	edges, err := queryEdges(ctx, s.db, `
		SELECT src_id, dst_id, kind, strength, file_path, start_line, end_line, updated_at
		FROM graph_edges
		WHERE user_id = ? AND project_id = ?
		ORDER BY file_path, src_id, dst_id, kind
	`, tenant.UserID, tenant.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return nodes, edges, nil
}

// NodesByFile returns the graph nodes a file produced.
func (s *SQLiteStore) NodesByFile(ctx context.Context, tenant types.Tenant, path string) ([]types.GraphNode, error) {
	return queryNodes(ctx, s.db, `
		SELECT id, kind, name, node_type, file_path, node_path, start_line, end_line, updated_at
		FROM graph_nodes
		WHERE user_id = ? AND project_id = ? AND file_path = ?
		ORDER BY node_path, id
	`, tenant.UserID, tenant.ProjectID, path)
}

// EdgesTouching returns every edge with the node as either endpoint.
func (s *SQLiteStore) EdgesTouching(ctx context.Context, tenant types.Tenant, nodeID string) ([]types.GraphEdge, error) {
	return queryEdges(ctx, s.db, `
		SELECT src_id, dst_id, kind, strength, file_path, start_line, end_line, updated_at
		FROM graph_edges
		WHERE user_id = ? AND project_id = ? AND (src_id = ? OR dst_id = ?)
		ORDER BY file_path, src_id, dst_id, kind
	`, tenant.UserID, tenant.ProjectID, nodeID, nodeID)
}

// queryNodes runs a node query and scans the rows.
func queryNodes(ctx context.Context, q querier, query string, args ...interface{}) ([]types.GraphNode, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	nodes := make([]types.GraphNode, 0)
	for rows.Next() {
		var node types.GraphNode
		var kind string
		var updatedNanos int64
		if err := rows.Scan(
			&node.ID, &kind, &node.Name, &node.NodeType,
			&node.FilePath, &node.NodePath, &node.StartLine, &node.EndLine, &updatedNanos,
		); err != nil {
			return nil, err
		}
		node.Kind = types.NodeKind(kind)
		node.UpdatedAt = time.Unix(0, updatedNanos)
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// queryEdges runs an edge query and scans the rows.
func queryEdges(ctx context.Context, q querier, query string, args ...interface{}) ([]types.GraphEdge, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edges := make([]types.GraphEdge, 0)
	for rows.Next() {
		var edge types.GraphEdge
		var updatedNanos int64
		if err := rows.Scan(
			&edge.SrcID, &edge.DstID, &edge.Kind, &edge.Strength,
			&edge.FilePath, &edge.StartLine, &edge.EndLine, &updatedNanos,
		); err != nil {
			return nil, err
		}
		edge.UpdatedAt = time.Unix(0, updatedNanos)
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}
