// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps an optional audit trail of pipeline runs in a
// SQLite database. The pipelines never read it back; it exists for people
// asking what a past run did.
package journal

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

	"github.com/pdiddy/docbatch/pkg/types"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Run is the summary row of one pipeline invocation.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Pipeline  string    `json:"pipeline" yaml:"pipeline"`
	Root      string    `json:"root" yaml:"root"`
	Started   time.Time `json:"started" yaml:"started"`
	Finished  time.Time `json:"finished" yaml:"finished"`
	Processed int       `json:"processed" yaml:"processed"`
	Converted int       `json:"converted" yaml:"converted"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
	Failed    int       `json:"failed" yaml:"failed"`
}

// NewStore opens or creates the journal at path and ensures its schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			pipeline TEXT NOT NULL,
			root TEXT,
			started TEXT NOT NULL,
			finished TEXT NOT NULL,
			processed INTEGER NOT NULL,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			source TEXT NOT NULL,
			target TEXT,
			encoding TEXT,
			outcome TEXT NOT NULL,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id, seq)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores a finished run and all its records in one transaction and
// returns the new run ID.
func (s *Store) Save(ctx context.Context, pipeline, root string, started, finished time.Time, result types.RunResult) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, pipeline, root, started, finished, processed, converted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, pipeline, root,
		started.UTC().Format(time.RFC3339Nano), finished.UTC().Format(time.RFC3339Nano),
		result.Processed, result.Converted, result.Skipped, result.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, source, target, encoding, outcome, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range result.Records {
		if _, err := stmt.ExecContext(ctx, id, i, rec.Source, rec.Target, rec.Encoding, string(rec.Outcome), rec.Reason); err != nil {
			return "", fmt.Errorf("inserting record %s: %w", rec.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 means 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pipeline, root, started, finished, processed, converted, skipped, failed
		 FROM runs ORDER BY started DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pipeline, root, started, finished, processed, converted, skipped, failed
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Records returns the records of a run in their original order.
func (s *Store) Records(ctx context.Context, id string) ([]types.Record, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target, encoding, outcome, reason FROM records WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var rec types.Record
		var target, encoding, reason sql.NullString
		var outcome string
		if err := rows.Scan(&rec.Source, &target, &encoding, &outcome, &reason); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Target = target.String
		rec.Encoding = encoding.String
		rec.Outcome = types.Outcome(outcome)
		rec.Reason = reason.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var root sql.NullString
	var started, finished string
	if err := sc.Scan(&r.ID, &r.Pipeline, &root, &started, &finished,
		&r.Processed, &r.Converted, &r.Skipped, &r.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.Root = root.String
	r.Started, _ = time.Parse(time.RFC3339Nano, started)
	r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
	return r, nil
}
