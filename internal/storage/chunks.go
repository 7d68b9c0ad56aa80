// Package storage persists text chunks in SQLite and reports disk usage.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/querio/querio/internal/models"
)

// ChunkStore keeps the text content of indexed chunks. Vectors live in the
// vector index file; the store maps chunk IDs back to their text.
type ChunkStore struct {
	db *sql.DB
}

// NewChunkStore opens or creates the SQLite database at dbPath and ensures
// the schema exists. Parent directories are created if needed.
func NewChunkStore(dbPath string) (*ChunkStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_position ON chunks(position);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &ChunkStore{db: db}, nil
}

// ReplaceAll atomically swaps the stored chunk set for the given one.
// Either every chunk is written or the previous contents remain.
func (s *ChunkStore) ReplaceAll(ctx context.Context, chunks []models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, position, content, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, i, c.Content, now); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByIDs returns the chunks for the given IDs keyed by ID. Unknown IDs are
// simply absent from the result.
func (s *ChunkStore) GetByIDs(ctx context.Context, ids []string) (map[string]models.Chunk, error) {
	out := make(map[string]models.Chunk, len(ids))
	stmt, err := s.db.PrepareContext(ctx, "SELECT id, position, content FROM chunks WHERE id = ?")
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		var c models.Chunk
		var position int
		err := stmt.QueryRowContext(ctx, id).Scan(&c.ID, &position, &c.Content)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select chunk %s: %w", id, err)
		}
		c.Metadata = map[string]string{"position": fmt.Sprintf("%d", position)}
		out[c.ID] = c
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (s *ChunkStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// LastUpdated returns the creation time of the newest chunk, or nil when the
// store is empty.
func (s *ChunkStore) LastUpdated(ctx context.Context) (*time.Time, error) {
	// MAX() strips the TIMESTAMP column type, and the driver only converts
	// typed columns to time.Time, so select the raw column instead.
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT created_at FROM chunks ORDER BY created_at DESC LIMIT 1").Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last update: %w", err)
	}
	t = t.UTC()
	return &t, nil
}

// Close closes the underlying database.
func (s *ChunkStore) Close() error {
	return s.db.Close()
}
