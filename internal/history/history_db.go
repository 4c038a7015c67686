// Package history is the opt-in SQLite audit store for workflow steps.
// Each dashboard or run invocation records under its own session id.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/apichain/internal/migrations"
	"github.com/studiowebux/apichain/internal/types"
)

const timestampLayout = time.RFC3339Nano

// Entry is one recorded workflow step
type Entry struct {
	ID          int64           `json:"id" yaml:"id"`
	SessionID   string          `json:"sessionId" yaml:"sessionId"`
	API         string          `json:"api" yaml:"api"`
	Count       int             `json:"count" yaml:"count"`
	Data        json.RawMessage `json:"data" yaml:"-"`
	CompletedAt time.Time       `json:"completedAt" yaml:"completedAt"`
}

// Session describes one recording session
type Session struct {
	ID          string    `json:"id" yaml:"id"`
	StartedAt   time.Time `json:"startedAt" yaml:"startedAt"`
	BaseURL     string    `json:"baseUrl" yaml:"baseUrl"`
	ProfileName string    `json:"profile,omitempty" yaml:"profile,omitempty"`
	Steps       int       `json:"steps" yaml:"steps"`
}

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite serializes writers; a single connection also keeps :memory: shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// NewRecorder opens a new session and returns a recorder bound to it
func (m *Manager) NewRecorder(baseURL, profileName string) (*Recorder, error) {
	id := uuid.NewString()
	_, err := m.db.Exec(
		"INSERT INTO sessions (id, started_at, base_url, profile_name) VALUES (?, ?, ?, ?)",
		id, time.Now().UTC().Format(timestampLayout), baseURL, profileName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Recorder{manager: m, sessionID: id}, nil
}

func (m *Manager) save(sessionID string, step types.WorkflowStep) error {
	data, err := json.Marshal(step.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal step data: %w", err)
	}

	completedAt := step.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	_, err = m.db.Exec(
		"INSERT INTO workflow_steps (session_id, api, count, data, completed_at) VALUES (?, ?, ?, ?, ?)",
		sessionID, step.API, step.Count, string(data), completedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow step: %w", err)
	}
	return nil
}

// Load returns the steps of a session in completion order. An empty
// sessionID loads every session; limit <= 0 means no limit.
func (m *Manager) Load(sessionID string, limit int) ([]Entry, error) {
	query := `
		SELECT id, session_id, api, count, data, completed_at
		FROM workflow_steps
		WHERE session_id = ? OR ? = ''
		ORDER BY id ASC
	`
	args := []any{sessionID, sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var e Entry
		var data string
		var completedAt string

		if err := rows.Scan(&e.ID, &e.SessionID, &e.API, &e.Count, &data, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.Data = json.RawMessage(data)
		if t, err := time.Parse(timestampLayout, completedAt); err == nil {
			e.CompletedAt = t.Local()
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}

// Sessions lists recorded sessions, newest first
func (m *Manager) Sessions() ([]Session, error) {
	rows, err := m.db.Query(`
		SELECT s.id, s.started_at, s.base_url, s.profile_name, COUNT(w.id)
		FROM sessions s
		LEFT JOIN workflow_steps w ON w.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt string
		if err := rows.Scan(&s.ID, &startedAt, &s.BaseURL, &s.ProfileName, &s.Steps); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if t, err := time.Parse(timestampLayout, startedAt); err == nil {
			s.StartedAt = t.Local()
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Clear removes all sessions and steps
func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM workflow_steps"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := m.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

// GetCount returns the number of recorded steps
func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM workflow_steps").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Recorder writes the steps of one session
type Recorder struct {
	manager   *Manager
	sessionID string
	mu        sync.Mutex
}

// SessionID returns the session the recorder writes to
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Record stores one workflow step
func (r *Recorder) Record(step types.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manager.save(r.sessionID, step)
}
