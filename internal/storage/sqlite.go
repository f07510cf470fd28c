package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scenedex/scenedex/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

var _ Store = (*SQLiteStore)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New creates a SQLite store at dbPath and applies pending migrations.
func New(dbPath string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Debugw("storage ready", "path", dbPath, "driver", DriverName, "build", BuildMode)
	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Chunk operations

// FileHash returns the stored content hash for a path, or "" if the file
// has never been indexed for this tenant.
func (s *SQLiteStore) FileHash(ctx context.Context, tenant types.Tenant, path string) (string, error) {
	query := `
		SELECT file_hash FROM chunks
		WHERE user_id = ? AND project_id = ? AND file_path = ?
		ORDER BY indexed_at DESC, id DESC
		LIMIT 1
	`
	var hash string
	err := s.db.QueryRowContext(ctx, query, tenant.UserID, tenant.ProjectID, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file hash: %w", err)
	}
	return hash, nil
}

// UpsertFile replaces a file's chunk rows with a new generation.
//
// The stored hash gates the write: when it matches the incoming hash the
// call is a no-op reporting UpsertUnchanged, unless force is set. Stale
// generations are deleted best-effort; a failed delete is logged and the
// insert proceeds, since reads dedup to the newest generation anyway.
func (s *SQLiteStore) UpsertFile(ctx context.Context, tenant types.Tenant, path string, chunks []types.TextChunk, embeddings [][]float32, hash string, force bool) (UpsertStatus, error) {
	if len(chunks) != len(embeddings) {
		return "", fmt.Errorf("%w: %d chunks, %d embeddings", ErrCountMismatch, len(chunks), len(embeddings))
	}

	stored, err := s.FileHash(ctx, tenant, path)
	if err != nil {
		return "", err
	}
	if stored != "" && stored == hash && !force {
		return UpsertUnchanged, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	); err != nil {
		s.log.Warnw("failed to delete stale chunk rows", "file", path, "error", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (user_id, project_id, file_path, chunk_index, content,
		                    start_line, end_line, file_hash, category, embedding, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	category := string(types.DetectCategory(path))
	now := time.Now().UnixNano()
	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx,
			tenant.UserID, tenant.ProjectID, path, chunk.Index, chunk.Content,
			chunk.StartLine, chunk.EndLine, hash, category,
			serializeVector(embeddings[i]), now,
		); err != nil {
			return "", fmt.Errorf("failed to insert chunk %d of %s: %w", chunk.Index, path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit chunk rows: %w", err)
	}
	return UpsertIndexed, nil
}

// RemoveFile deletes all chunk rows for a file. Removing a file that was
// never indexed is a no-op.
func (s *SQLiteStore) RemoveFile(ctx context.Context, tenant types.Tenant, path string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE user_id = ? AND project_id = ? AND file_path = ?`,
		tenant.UserID, tenant.ProjectID, path,
	)
	if err != nil {
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}

// SweepMissing deletes chunk rows for files absent from the present set and
// returns how many files were swept.
func (s *SQLiteStore) SweepMissing(ctx context.Context, tenant types.Tenant, present map[string]struct{}) (int, error) {
	paths, err := s.ListFiles(ctx, tenant)
	if err != nil {
		return 0, err
	}

	var stale []string
	for _, path := range paths {
		if _, ok := present[path]; !ok {
			stale = append(stale, path)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, path := range stale {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chunks WHERE user_id = ? AND project_id = ? AND file_path = ?`,
			tenant.UserID, tenant.ProjectID, path,
		); err != nil {
			return 0, fmt.Errorf("failed to sweep %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}
	return len(stale), nil
}

// ListFiles returns the distinct indexed file paths for a tenant.
func (s *SQLiteStore) ListFiles(ctx context.Context, tenant types.Tenant) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT file_path FROM chunks WHERE user_id = ? AND project_id = ? ORDER BY file_path`,
		tenant.UserID, tenant.ProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Maintenance operations

// Stats summarizes the tenant's stored index.
func (s *SQLiteStore) Stats(ctx context.Context, tenant types.Tenant) (*IndexStats, error) {
	stats := &IndexStats{}

	var lastNanos int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT file_path),
		       (SELECT COUNT(*) FROM (
		            SELECT DISTINCT file_path, chunk_index FROM chunks
		            WHERE user_id = ? AND project_id = ?
		       )),
		       COALESCE(MAX(indexed_at), 0)
		FROM chunks
		WHERE user_id = ? AND project_id = ?
	`, tenant.UserID, tenant.ProjectID, tenant.UserID, tenant.ProjectID).Scan(
		&stats.FilesIndexed, &stats.TotalChunks, &lastNanos,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk stats: %w", err)
	}
	if lastNanos > 0 {
		stats.LastIndexed = time.Unix(0, lastNanos)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM graph_nodes WHERE user_id = ? AND project_id = ?`,
		tenant.UserID, tenant.ProjectID,
	).Scan(&stats.GraphNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to count graph nodes: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM graph_edges WHERE user_id = ? AND project_id = ?`,
		tenant.UserID, tenant.ProjectID,
	).Scan(&stats.GraphEdges)
	if err != nil {
		return nil, fmt.Errorf("failed to count graph edges: %w", err)
	}

	return stats, nil
}

// Clear removes everything stored for a tenant.
func (s *SQLiteStore) Clear(ctx context.Context, tenant types.Tenant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"chunks", "graph_edges", "graph_nodes"} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND project_id = ?`, table)
		if _, err := tx.ExecContext(ctx, query, tenant.UserID, tenant.ProjectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}
