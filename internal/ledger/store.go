// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records the outcome of every document run in a SQLite
// database so the status of past conversions can be queried and exported.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path, creating its directory and
// schema when needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			stem TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			state TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			split INTEGER NOT NULL DEFAULT 0,
			chunks_total INTEGER NOT NULL DEFAULT 0,
			chunks_succeeded INTEGER NOT NULL DEFAULT 0,
			chunks_skipped INTEGER NOT NULL DEFAULT 0,
			chunks_failed INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0,
			images INTEGER NOT NULL DEFAULT 0,
			markdown_path TEXT,
			error TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stem TEXT NOT NULL REFERENCES documents(stem),
			state TEXT NOT NULL,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_state ON documents(state)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_stem ON attempts(stem)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores the latest outcome for a document and appends an attempt.
func (s *Store) Record(ctx context.Context, r types.DocumentResult) error {
	ts := s.now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (stem, source, state, size, split, chunks_total, chunks_succeeded,
			chunks_skipped, chunks_failed, pages, images, markdown_path, error, attempts, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT(stem) DO UPDATE SET
			source=excluded.source, state=excluded.state, size=excluded.size, split=excluded.split,
			chunks_total=excluded.chunks_total, chunks_succeeded=excluded.chunks_succeeded,
			chunks_skipped=excluded.chunks_skipped, chunks_failed=excluded.chunks_failed,
			pages=excluded.pages, images=excluded.images, markdown_path=excluded.markdown_path,
			error=excluded.error, attempts=documents.attempts+1, updated_at=excluded.updated_at`,
		r.Stem, r.Source, string(r.State), r.Size, r.Split, r.ChunksTotal, r.ChunksSucceeded,
		r.ChunksSkipped, r.ChunksFailed, r.Pages, r.Images, r.MarkdownPath, r.Error, ts,
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", r.Stem, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (stem, state, error, recorded_at) VALUES (?, ?, ?, ?)`,
		r.Stem, string(r.State), r.Error, ts,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt for %s: %w", r.Stem, err)
	}

	return tx.Commit()
}

// Entry is one document row of the ledger.
type Entry struct {
	Stem            string    `json:"stem" yaml:"stem"`
	Source          string    `json:"source" yaml:"source"`
	State           string    `json:"state" yaml:"state"`
	Size            int64     `json:"size" yaml:"size"`
	Split           bool      `json:"split" yaml:"split"`
	ChunksTotal     int       `json:"chunks_total" yaml:"chunks_total"`
	ChunksSucceeded int       `json:"chunks_succeeded" yaml:"chunks_succeeded"`
	ChunksSkipped   int       `json:"chunks_skipped" yaml:"chunks_skipped"`
	ChunksFailed    int       `json:"chunks_failed" yaml:"chunks_failed"`
	Pages           int       `json:"pages" yaml:"pages"`
	Images          int       `json:"images" yaml:"images"`
	MarkdownPath    string    `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
	Error           string    `json:"error,omitempty" yaml:"error,omitempty"`
	Attempts        int       `json:"attempts" yaml:"attempts"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// List returns ledger entries ordered by stem. A non-empty state restricts
// the result to documents whose latest outcome is that state.
func (s *Store) List(ctx context.Context, state types.DocumentState) ([]Entry, error) {
	query := `SELECT stem, source, state, size, split, chunks_total, chunks_succeeded,
		chunks_skipped, chunks_failed, pages, images, COALESCE(markdown_path, ''),
		COALESCE(error, ''), attempts, updated_at FROM documents`
	var args []any
	if state != "" {
		query += ` WHERE state = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY stem`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Stem, &e.Source, &e.State, &e.Size, &e.Split, &e.ChunksTotal,
			&e.ChunksSucceeded, &e.ChunksSkipped, &e.ChunksFailed, &e.Pages, &e.Images,
			&e.MarkdownPath, &e.Error, &e.Attempts, &updated); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			e.UpdatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns the number of documents per latest state.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, count(*) FROM documents GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("counting ledger states: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[state] = n
	}
	return counts, rows.Err()
}
