// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobstore persists the advisory record of the current resolution
// job so a restarted process can replay it. At most one job is stored.
package jobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sparos/pkg/types"
)

const dbFile = "jobs.db"

// Store keeps the current job in a single-row SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens or creates the job database at stateDir/jobs.db.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.StateDir
	if dir == "" {
		dir = types.DefaultStateDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS current_job (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		id TEXT NOT NULL,
		query TEXT NOT NULL,
		token INTEGER NOT NULL,
		started_at TEXT NOT NULL
	)`)
	return err
}

// Save replaces the stored job.
func (s *Store) Save(ctx context.Context, job types.SearchJob) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO current_job (slot, id, query, token, started_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			query = excluded.query,
			token = excluded.token,
			started_at = excluded.started_at`,
		job.ID, job.Query, int64(job.Token), job.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

// Load returns the stored job, or nil when there is none.
func (s *Store) Load(ctx context.Context) (*types.SearchJob, error) {
	var (
		job       types.SearchJob
		token     int64
		startedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, token, started_at FROM current_job WHERE slot = 1`,
	).Scan(&job.ID, &job.Query, &token, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading job: %w", err)
	}

	job.Token = uint64(token)
	job.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
	}
	return &job, nil
}

// Clear removes the stored job. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM current_job`); err != nil {
		return fmt.Errorf("clearing job: %w", err)
	}
	return nil
}
