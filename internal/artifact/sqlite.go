// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "artifacts.db"

// SQLiteStore keeps artifacts in a single SQLite database under the output
// directory, one row per (query, kind).
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback Store
}

// Entry describes a stored artifact without its payload.
type Entry struct {
	Query     string
	Kind      Kind
	Size      int
	RunID     string
	CreatedAt time.Time
}

// fallbackKinds are produced outside the pipeline and may be read from the
// fallback store. Stage outputs are never taken from it.
var fallbackKinds = map[Kind]bool{KindClusters: true}

// NewSQLiteStore opens or creates dir/artifacts.db. When fallback is non-nil,
// cluster files missing from the database are read from it.
func NewSQLiteStore(dir string, fallback Store) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, fallback: fallback}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			query TEXT NOT NULL,
			kind TEXT NOT NULL,
			data BLOB NOT NULL,
			run_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (query, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_query ON artifacts(query)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Location names the database row for key.
func (s *SQLiteStore) Location(key Key) string {
	return fmt.Sprintf("%s#%s/%s", s.path, key.Query, key.Kind)
}

// Get returns the stored artifact. A missing cluster input is read from the
// fallback store.
func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM artifacts WHERE query = ? AND kind = ?`,
		key.Query, string(key.Kind),
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if s.fallback != nil && fallbackKinds[key.Kind] {
			return s.fallback.Get(ctx, key)
		}
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("querying artifact %s/%s: %w", key.Query, key.Kind, err)
	}
	return data, true, nil
}

// Put upserts the artifact and stamps it with a fresh run id.
func (s *SQLiteStore) Put(ctx context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (query, kind, data, run_id, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(query, kind) DO UPDATE SET
			data = excluded.data, run_id = excluded.run_id, created_at = excluded.created_at`,
		key.Query, string(key.Kind), data, uuid.NewString(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing artifact %s/%s: %w", key.Query, key.Kind, err)
	}
	return nil
}

// List returns the artifacts stored for query, oldest first.
func (s *SQLiteStore) List(ctx context.Context, query string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, kind, length(data), run_id, created_at FROM artifacts
		 WHERE query = ? ORDER BY created_at`, query)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind, created string
		if err := rows.Scan(&e.Query, &kind, &e.Size, &e.RunID, &created); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		e.Kind = Kind(kind)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
