// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "modernc.org/sqlite"

	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/errors"
)

// Run is one recorded rule evaluation.
type Run struct {
	ID        int64     `json:"id"`
	Snapshot  string    `json:"snapshot"`
	RuleID    string    `json:"rule_id"`
	HitCount  int       `json:"hit_count"`
	Partial   bool      `json:"partial"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store handles database operations
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the history database at path. An empty
// path defaults to ~/.caged/history.db.
func Open(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.WrapStoreError(fmt.Errorf("failed to get home dir: %w", err))
		}
		dir := filepath.Join(home, ".caged")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapStoreError(fmt.Errorf("failed to create data dir: %w", err))
		}
		path = filepath.Join(dir, "history.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapStoreError(fmt.Errorf("failed to open db: %w", err))
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot TEXT NOT NULL,
		rule_id TEXT NOT NULL,
		hit_count INTEGER NOT NULL,
		partial INTEGER NOT NULL DEFAULT 0,
		error_msg TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS hits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		contract TEXT NOT NULL,
		signature TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_rule ON runs(rule_id);
	CREATE INDEX IF NOT EXISTS idx_hits_run ON hits(run_id);
	`
	if _, err := db.Exec(query); err != nil {
		return errors.WrapStoreError(fmt.Errorf("failed to init schema: %w", err))
	}
	return nil
}

// SaveResult persists one rule result with its hits, preserving hit
// order through the position column.
func (s *Store) SaveResult(snapshot string, res engine.RuleResult) (int64, error) {
	errMsg := ""
	partial := 0
	if res.Err != nil {
		errMsg = res.Err.Error()
		partial = 1
	}

	out, err := s.db.Exec(
		`INSERT INTO runs (snapshot, rule_id, hit_count, partial, error_msg, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot, res.RuleID, len(res.Hits), partial, errMsg, time.Now(),
	)
	if err != nil {
		return 0, errors.WrapStoreError(fmt.Errorf("failed to insert run: %w", err))
	}
	runID, err := out.LastInsertId()
	if err != nil {
		return 0, errors.WrapStoreError(err)
	}

	for i, h := range res.Hits {
		if _, err := s.db.Exec(
			`INSERT INTO hits (run_id, position, contract, signature) VALUES (?, ?, ?, ?)`,
			runID, i, h.Function.Contract.Hex(), h.Function.Signature,
		); err != nil {
			return runID, errors.WrapStoreError(fmt.Errorf("failed to insert hit: %w", err))
		}
	}
	return runID, nil
}

// HistoryParams defines the criteria for querying past runs.
type HistoryParams struct {
	RuleID string
	Limit  int
}

// History returns recorded runs, newest first.
func (s *Store) History(params HistoryParams) ([]Run, error) {
	query := "SELECT id, snapshot, rule_id, hit_count, partial, error_msg, timestamp FROM runs WHERE 1=1"
	args := []any{}

	if params.RuleID != "" {
		query += " AND rule_id = ?"
		args = append(args, params.RuleID)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if params.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, params.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.WrapStoreError(fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		var run Run
		var partial int
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.Snapshot, &run.RuleID, &run.HitCount, &partial, &errMsg, &run.Timestamp); err != nil {
			continue
		}
		run.Partial = partial != 0
		run.ErrorMsg = errMsg.String
		results = append(results, run)
	}
	return results, rows.Err()
}

// RunHits returns the recorded hits of one run in stored order.
func (s *Store) RunHits(runID int64) ([]engine.Hit, error) {
	rows, err := s.db.Query(
		`SELECT contract, signature FROM hits WHERE run_id = ? ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, errors.WrapStoreError(err)
	}
	defer rows.Close()

	var ruleID string
	if err := s.db.QueryRow(`SELECT rule_id FROM runs WHERE id = ?`, runID).Scan(&ruleID); err != nil {
		return nil, errors.WrapStoreError(err)
	}

	var hits []engine.Hit
	for rows.Next() {
		var contract, signature string
		if err := rows.Scan(&contract, &signature); err != nil {
			continue
		}
		h := engine.Hit{RuleID: ruleID}
		h.Function.Contract = common.HexToAddress(contract)
		h.Function.Signature = signature
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
