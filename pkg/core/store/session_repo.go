package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is one chat turn within a session.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalysisRun records one executed question: the plan the model produced
// and the result the executor computed. Kept for audit and replay.
type AnalysisRun struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Query      string    `json:"query"`
	PlanJSON   string    `json:"plan_json"`
	ResultJSON string    `json:"result_json"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionStore persists sessions, messages, and runs.
// Hybrid backend: DB (primary) + file system (local fallback).
type SessionStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSessionStore creates a store. With a nil pool it writes JSON files
// under dir (default .cache/sessions).
func NewSessionStore(pool *pgxpool.Pool, dir string) *SessionStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "sessions")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] check session store dir: %v\n", err)
		}
	}
	return &SessionStore{pool: pool, fileDir: dir}
}

// NewSessionID mints a session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// EnsureSchema creates the session tables when they do not exist yet.
// No-op on the file backend.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS session_messages (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			plan_json TEXT,
			result_json TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure session schema: %w", err)
		}
	}
	return nil
}

// AppendMessage stores one chat turn.
func (s *SessionStore) AppendMessage(ctx context.Context, sessionID string, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if s.pool != nil {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO session_messages (session_id, role, content, created_at)
			VALUES ($1, $2, $3, $4)
		`, sessionID, msg.Role, msg.Content, msg.CreatedAt)
		return err
	}

	history, err := s.History(ctx, sessionID)
	if err != nil {
		history = nil
	}
	history = append(history, msg)
	return s.writeFile(s.messagesPath(sessionID), history)
}

// History returns the session's messages in order.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	if s.pool != nil {
		rows, err := s.pool.Query(ctx, `
			SELECT role, content, created_at
			FROM session_messages
			WHERE session_id = $1
			ORDER BY created_at
		`, sessionID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []Message
		for rows.Next() {
			var m Message
			if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, rows.Err()
	}

	var out []Message
	data, err := os.ReadFile(s.messagesPath(sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session history: %w", err)
	}
	return out, nil
}

// SaveRun records an executed analysis.
func (s *SessionStore) SaveRun(ctx context.Context, run AnalysisRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if s.pool != nil {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO analysis_runs (id, session_id, query, plan_json, result_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, run.ID, run.SessionID, run.Query, run.PlanJSON, run.ResultJSON, run.CreatedAt)
		return err
	}

	return s.writeFile(filepath.Join(s.fileDir, "run_"+run.ID+".json"), run)
}

func (s *SessionStore) messagesPath(sessionID string) string {
	return filepath.Join(s.fileDir, "session_"+sessionID+".json")
}

func (s *SessionStore) writeFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
