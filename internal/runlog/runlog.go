// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog persists completed pipeline runs in a SQLite database so
// past parts lists can be listed, searched, and reloaded.
// Implements: prd009-operations (R2.1-R2.5); docs/ARCHITECTURE § Run History.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/parts-engine/pkg/types"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the run history database at cfg.Path, creating the
// schema and parent directory as needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
			id TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			created_at TEXT NOT NULL,
			part_count INTEGER NOT NULL,
			total_cost TEXT,
			compatibility_summary TEXT,
			parts_json TEXT NOT NULL,
			final_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			step TEXT NOT NULL,
			reasoning TEXT,
			search_queries TEXT,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_steps_run_id ON steps(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over descriptions with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(description, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, description) VALUES (new.rowid, new.description);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, description) VALUES('delete', old.rowid, old.description);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, description) VALUES('delete', old.rowid, old.description);
				INSERT INTO runs_fts(rowid, description) VALUES (new.rowid, new.description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun stores a completed run and its trace steps. Saving the same run ID
// again replaces the previous record.
func (s *Store) SaveRun(ctx context.Context, result *types.RunResult) error {
	partsJSON, err := json.Marshal(result.PartsList)
	if err != nil {
		return fmt.Errorf("encoding parts list: %w", err)
	}
	finalJSON, err := json.Marshal(result.FinalList)
	if err != nil {
		return fmt.Errorf("encoding final list: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM steps WHERE run_id = ?`, result.ID); err != nil {
		return fmt.Errorf("deleting old steps: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, description, created_at, part_count, total_cost, compatibility_summary, parts_json, final_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			description=excluded.description, created_at=excluded.created_at,
			part_count=excluded.part_count, total_cost=excluded.total_cost,
			compatibility_summary=excluded.compatibility_summary,
			parts_json=excluded.parts_json, final_json=excluded.final_json`,
		result.ID, result.Description, result.CreatedAt.UTC().Format(time.RFC3339Nano),
		len(result.FinalList.FinalParts), result.FinalList.TotalEstimatedCost,
		result.FinalList.CompatibilitySummary, string(partsJSON), string(finalJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO steps (run_id, position, step, reasoning, search_queries, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing step insert: %w", err)
	}
	defer stmt.Close()

	for i, step := range result.Steps {
		queriesJSON, _ := json.Marshal(step.SearchQueries)
		_, err := stmt.ExecContext(ctx,
			result.ID, i, step.Step, step.Reasoning,
			string(queriesJSON), step.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting step %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a stored run, including its trace steps, by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*types.RunResult, error) {
	var (
		result    types.RunResult
		createdAt string
		partsJSON string
		finalJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, created_at, parts_json, final_json FROM runs WHERE id = ?`, id,
	).Scan(&result.ID, &result.Description, &createdAt, &partsJSON, &finalJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up run: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		result.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(partsJSON), &result.PartsList); err != nil {
		return nil, fmt.Errorf("decoding parts list: %w", err)
	}
	if err := json.Unmarshal([]byte(finalJSON), &result.FinalList); err != nil {
		return nil, fmt.Errorf("decoding final list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT step, reasoning, search_queries, timestamp FROM steps WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	result.Steps = []types.AgentStep{}
	for rows.Next() {
		var (
			step        types.AgentStep
			reasoning   sql.NullString
			queriesJSON sql.NullString
			timestamp   string
		)
		if err := rows.Scan(&step.Step, &reasoning, &queriesJSON, &timestamp); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		if reasoning.Valid {
			step.Reasoning = reasoning.String
		}
		if queriesJSON.Valid {
			json.Unmarshal([]byte(queriesJSON.String), &step.SearchQueries)
		}
		if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			step.Timestamp = t
		}
		result.Steps = append(result.Steps, step)
	}
	return &result, rows.Err()
}

// RunSummary is one row in a run listing.
type RunSummary struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	PartCount   int       `json:"partCount" yaml:"partCount"`
	TotalCost   string    `json:"totalCost,omitempty" yaml:"totalCost,omitempty"`
}

// ListOptions holds parameters for run listings.
type ListOptions struct {
	// Search is an FTS5 full-text query over run descriptions. Empty lists
	// all runs.
	Search string

	// MaxResults limits the listing. Zero uses the store default.
	MaxResults int
}

// ListRuns returns run summaries, newest first. With a search query, results
// are ranked by full-text relevance instead.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]RunSummary, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	if opts.Search != "" {
		qb.WriteString(
			`SELECT r.id, r.description, r.created_at, r.part_count, r.total_cost
			FROM runs_fts
			JOIN runs r ON r.rowid = runs_fts.rowid
			WHERE runs_fts MATCH ?
			ORDER BY runs_fts.rank`)
		args = append(args, opts.Search)
	} else {
		qb.WriteString(
			`SELECT id, description, created_at, part_count, total_cost
			FROM runs
			ORDER BY created_at DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			summary   RunSummary
			createdAt string
			totalCost sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Description, &createdAt, &summary.PartCount, &totalCost); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			summary.CreatedAt = t
		}
		if totalCost.Valid {
			summary.TotalCost = totalCost.String
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
