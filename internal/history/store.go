// Package history persists completed runs to a SQLite database so they can
// be listed and inspected later. Saving is best-effort from the caller's
// point of view; a failed save never fails the run that produced it.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/metrics"
)

// ErrNotFound is returned when a run ID does not exist in the store.
var ErrNotFound = errors.New("run not found")

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// RunRecord is one completed run: the configuration it ran with and the
// summary it produced. Sections are populated by GetRun only.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	DurationMs     int64
	CollectionFile string
	CollectionName string
	Users          int
	IntervalMs     int64
	TotalMs        int64
	Stagger        bool
	Requests       int64

	Sections []metrics.RequestSummary
}

// NewRecord builds the record for a completed run.
func NewRecord(runID string, cfg config.RunConfig, collectionName string, startedAt time.Time, rep *metrics.Report) RunRecord {
	return RunRecord{
		ID:             runID,
		StartedAt:      startedAt,
		DurationMs:     rep.DurationMs,
		CollectionFile: cfg.File,
		CollectionName: collectionName,
		Users:          cfg.Users,
		IntervalMs:     cfg.Interval.Milliseconds(),
		TotalMs:        cfg.Total.Milliseconds(),
		Stagger:        cfg.Stagger,
		Requests:       rep.TotalCount(),
		Sections:       rep.Requests,
	}
}

// Open opens (creating if needed) the history database at dbPath and brings
// its schema up to date.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun inserts a completed run and its per-request sections in one
// transaction.
func (s *Store) SaveRun(rec RunRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, started_at, duration_ms, collection_file, collection_name,
			users, interval_ms, total_ms, stagger, requests
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.DurationMs,
		rec.CollectionFile,
		rec.CollectionName,
		rec.Users,
		rec.IntervalMs,
		rec.TotalMs,
		rec.Stagger,
		rec.Requests,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for i, sec := range rec.Sections {
		codesJSON, err := json.Marshal(sec.Codes)
		if err != nil {
			return fmt.Errorf("failed to marshal status codes: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO run_requests (
				run_id, position, name, count,
				avg_ms, min_ms, max_ms, p50_ms, p90_ms, p95_ms, p99_ms, codes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			i,
			sec.Name,
			sec.Count,
			sec.AvgMs,
			sec.MinMs,
			sec.MaxMs,
			sec.P50Ms,
			sec.P90Ms,
			sec.P95Ms,
			sec.P99Ms,
			string(codesJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to save request section %q: %w", sec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without their
// per-request sections. A non-positive limit defaults to 20.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, duration_ms, collection_file, collection_name,
		       users, interval_ms, total_ms, stagger, requests
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its per-request sections. It returns
// ErrNotFound when no run has the given ID.
func (s *Store) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, duration_ms, collection_file, collection_name,
		       users, interval_ms, total_ms, stagger, requests
		FROM runs
		WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT name, count, avg_ms, min_ms, max_ms, p50_ms, p90_ms, p95_ms, p99_ms, codes
		FROM run_requests
		WHERE run_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec metrics.RequestSummary
		var codesJSON string

		err := rows.Scan(
			&sec.Name,
			&sec.Count,
			&sec.AvgMs,
			&sec.MinMs,
			&sec.MaxMs,
			&sec.P50Ms,
			&sec.P90Ms,
			&sec.P95Ms,
			&sec.P99Ms,
			&codesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request section: %w", err)
		}

		if err := json.Unmarshal([]byte(codesJSON), &sec.Codes); err != nil {
			return nil, fmt.Errorf("failed to decode status codes: %w", err)
		}

		rec.Sections = append(rec.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &rec, nil
}

// Count returns the number of stored runs.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var startedAt string

	err := row.Scan(
		&rec.ID,
		&startedAt,
		&rec.DurationMs,
		&rec.CollectionFile,
		&rec.CollectionName,
		&rec.Users,
		&rec.IntervalMs,
		&rec.TotalMs,
		&rec.Stagger,
		&rec.Requests,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return rec, fmt.Errorf("failed to parse run timestamp %q: %w", startedAt, err)
	}
	return rec, nil
}
