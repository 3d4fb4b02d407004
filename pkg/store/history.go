// Package store persists lint run history in a local SQLite database.
package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/projlint/projlint/pkg/manifest"
)

const schema = `
CREATE TABLE IF NOT EXISTS lint_runs_v1 (
	id TEXT PRIMARY KEY,
	manifest_path TEXT NOT NULL,
	errors INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS lint_runs_v1_created_at ON lint_runs_v1 (created_at DESC);
`

// Run is one recorded lint invocation.
type Run struct {
	ID           string    `db:"id" json:"id"`
	ManifestPath string    `db:"manifest_path" json:"manifest_path"`
	Errors       int       `db:"errors" json:"errors"`
	Warnings     int       `db:"warnings" json:"warnings"`
	DurationMS   int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// History stores lint runs in a SQLite database.
type History struct {
	db *sqlx.DB
}

// OpenHistory opens (or creates) the history database at path and
// ensures the schema exists. Use ":memory:" for an ephemeral store.
func OpenHistory(path string) (*History, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Record stores one lint run derived from a report.
func (h *History) Record(r *manifest.Report, duration time.Duration) error {
	_, err := h.db.Exec(
		`INSERT INTO lint_runs_v1 (id, manifest_path, errors, warnings, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ManifestPath, r.Errors(), r.Warnings(), duration.Milliseconds(), r.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("record lint run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A limit of 0 or less
// defaults to 20.
func (h *History) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := h.db.Select(&runs,
		`SELECT id, manifest_path, errors, warnings, duration_ms, created_at
		 FROM lint_runs_v1 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list lint runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
