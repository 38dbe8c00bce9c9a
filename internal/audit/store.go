// Package audit persists a structured log entry for every completed or
// failed agent execution. The log is write-only from the orchestration
// engine's perspective; it exists for after-the-fact review.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Execution types recorded per run.
const (
	ExecutionLive      = "live"
	ExecutionSimulated = "simulated"
)

// Entry is one audit record for a terminal agent execution.
type Entry struct {
	ID             string
	AgentID        string
	Platform       string
	ExecutionType  string // live or simulated
	Status         string // completed or failed
	Confidence     float64
	DurationMs     int64
	InputSnapshot  any // marshaled to JSON on write
	OutputSnapshot any // marshaled to JSON on write
	ErrorMessage   string
	CreatedAt      time.Time
}

// Store manages the SQLite database backing the audit log.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a Store and initializes the database schema.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing immediately when two invocations share the database file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordExecution inserts one audit entry. A zero ID gets a generated uuid,
// and a zero CreatedAt gets the current time; both are written back to e.
func (s *Store) RecordExecution(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	inputJSON, err := marshalSnapshot(e.InputSnapshot)
	if err != nil {
		return fmt.Errorf("marshal input snapshot: %w", err)
	}
	outputJSON, err := marshalSnapshot(e.OutputSnapshot)
	if err != nil {
		return fmt.Errorf("marshal output snapshot: %w", err)
	}

	query := `INSERT INTO agent_executions
		(id, agent_id, platform, execution_type, status, confidence, duration_ms, input_snapshot, output_snapshot, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		e.ID,
		e.AgentID,
		e.Platform,
		e.ExecutionType,
		e.Status,
		e.Confidence,
		e.DurationMs,
		inputJSON,
		outputJSON,
		e.ErrorMessage,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert agent execution: %w", err)
	}

	return nil
}

// CountExecutions returns the number of audit rows for an agent id.
// Used by tests and maintenance tooling, not by the engine itself.
func (s *Store) CountExecutions(ctx context.Context, agentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agent_executions WHERE agent_id = ?`, agentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count executions: %w", err)
	}
	return count, nil
}

func marshalSnapshot(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
