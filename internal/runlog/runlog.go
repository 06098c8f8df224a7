// Package runlog persists comparison runs in a local sqlite database: one
// row per run plus one row per computed level set, so threshold choices can
// be compared across runs after the figures are gone.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps the run-history database.
type Store struct {
	*sql.DB
}

// Run is one recorded comparison run.
type Run struct {
	ID        string
	Source    string
	Rows      int
	Cols      int
	CreatedAt time.Time
}

// LevelSet is one scheme's thresholds and bin weights at one resolution.
type LevelSet struct {
	K       int
	Scheme  string
	Levels  []float64
	Weights []float64
}

// Open opens (creating if needed) the run-history database at path and runs
// any pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// RecordRun inserts a run row and returns its generated id.
func (s *Store) RecordRun(ctx context.Context, source string, rows, cols int) (string, error) {
	id := uuid.New().String()
	_, err := s.ExecContext(ctx,
		"INSERT INTO runs (run_id, source, grid_rows, grid_cols) VALUES (?, ?, ?, ?)",
		id, source, rows, cols)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// RecordLevels inserts one level set for an existing run.
func (s *Store) RecordLevels(ctx context.Context, runID string, ls LevelSet) error {
	levels, err := json.Marshal(ls.Levels)
	if err != nil {
		return err
	}
	weights, err := json.Marshal(ls.Weights)
	if err != nil {
		return err
	}

	_, err = s.ExecContext(ctx,
		"INSERT INTO level_sets (run_id, k, scheme, levels, weights) VALUES (?, ?, ?, ?, ?)",
		runID, ls.K, ls.Scheme, string(levels), string(weights))
	if err != nil {
		return fmt.Errorf("record levels: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT run_id, source, grid_rows, grid_cols, created_at FROM runs ORDER BY created_at DESC, run_id LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Rows, &r.Cols, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LevelsForRun returns every level set recorded for a run, in insertion
// order.
func (s *Store) LevelsForRun(ctx context.Context, runID string) ([]LevelSet, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT k, scheme, levels, weights FROM level_sets WHERE run_id = ? ORDER BY level_set_id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []LevelSet
	for rows.Next() {
		var ls LevelSet
		var levels, weights string
		if err := rows.Scan(&ls.K, &ls.Scheme, &levels, &weights); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(levels), &ls.Levels); err != nil {
			return nil, fmt.Errorf("decode levels for run %s: %w", runID, err)
		}
		if err := json.Unmarshal([]byte(weights), &ls.Weights); err != nil {
			return nil, fmt.Errorf("decode weights for run %s: %w", runID, err)
		}
		sets = append(sets, ls)
	}
	return sets, rows.Err()
}
