// Package database is the embedded SQLite store used by the desktop shell.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the database file created under the data directory
const DefaultFileName = "notes.db"

const (
	StatusHealthy      = "healthy"
	StatusError        = "error"
	StatusDisconnected = "disconnected"
	StatusSuccess      = "success"
)

// ErrNotInitialized is returned before Open succeeds
var ErrNotInitialized = errors.New("database not initialized")

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		snippets_path TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`},
	{"snippets", `CREATE TABLE IF NOT EXISTS snippets (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		file_path TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`},
}

// Health reports whether the database answers
type Health struct {
	Status       string `json:"status" yaml:"status"`
	Message      string `json:"message" yaml:"message"`
	LastChecked  string `json:"last_checked" yaml:"last_checked"`
	ResponseTime *int64 `json:"response_time,omitempty" yaml:"response_time,omitempty"`
}

// QueryResult is the outcome of an ad-hoc statement
type QueryResult struct {
	Status       string `json:"status" yaml:"status"`
	Message      string `json:"message" yaml:"message"`
	Result       string `json:"result,omitempty" yaml:"result,omitempty"`
	ResponseTime int64  `json:"response_time" yaml:"response_time"`
	LastExecuted string `json:"last_executed" yaml:"last_executed"`
}

// Manager owns the single connection to the database file
type Manager struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// DefaultPath returns the database location under the user config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get app data directory: %w", err)
	}
	return filepath.Join(dir, "portmanager", DefaultFileName), nil
}

// Open creates the directory and the tables if needed. Calling Open again
// replaces the previous connection.
func (m *Manager) Open(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create app data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// single connection, shared by all callers
	db.SetMaxOpenConns(1)

	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s.ddl); err != nil {
			db.Close()
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		m.db.Close()
	}
	m.db = db
	return nil
}

// Close releases the connection
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func (m *Manager) timestamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

// Health probes the database with a throwaway table
func (m *Manager) Health(ctx context.Context) Health {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return Health{
			Status:      StatusDisconnected,
			Message:     "Database not initialized",
			LastChecked: m.timestamp(),
		}
	}

	_, err := m.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS health_check_temp (id INTEGER)")
	if err == nil {
		_, _ = m.db.ExecContext(ctx, "DROP TABLE IF EXISTS health_check_temp")
	}

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return Health{
			Status:       StatusError,
			Message:      fmt.Sprintf("Database error: %v", err),
			LastChecked:  m.timestamp(),
			ResponseTime: &elapsed,
		}
	}

	return Health{
		Status:       StatusHealthy,
		Message:      fmt.Sprintf("Database is healthy (%dms)", elapsed),
		LastChecked:  m.timestamp(),
		ResponseTime: &elapsed,
	}
}

// Query runs one statement. Row-returning statements yield their rows as
// '|'-delimited text with a header line; others report the rows affected.
func (m *Manager) Query(ctx context.Context, query string) QueryResult {
	start := time.Now()
	query = strings.TrimSpace(query)

	m.mu.Lock()
	defer m.mu.Unlock()

	result := func(status, message, body string) QueryResult {
		return QueryResult{
			Status:       status,
			Message:      message,
			Result:       body,
			ResponseTime: time.Since(start).Milliseconds(),
			LastExecuted: m.timestamp(),
		}
	}

	if m.db == nil {
		return result(StatusError, "Database not initialized", "")
	}

	if returnsRows(query) {
		text, n, err := queryRows(ctx, m.db, query)
		if err != nil {
			return result(StatusError, fmt.Sprintf("Query execution error: %v", err), fmt.Sprintf("Error details: %v", err))
		}
		return result(StatusSuccess, fmt.Sprintf("Query returned %d row(s) (%dms)", n, time.Since(start).Milliseconds()), text)
	}

	res, err := m.db.ExecContext(ctx, query)
	if err != nil {
		return result(StatusError, fmt.Sprintf("Query execution error: %v", err), fmt.Sprintf("Error details: %v", err))
	}
	affected, _ := res.RowsAffected()
	return result(StatusSuccess, fmt.Sprintf("Query executed successfully (%dms)", time.Since(start).Milliseconds()), fmt.Sprintf("Rows affected: %d", affected))
}

// CreateUser inserts a user row and returns its id
func (m *Manager) CreateUser(ctx context.Context, name, snippetsPath string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return 0, ErrNotInitialized
	}

	res, err := m.db.ExecContext(ctx,
		"INSERT INTO users (name, snippets_path, created_at) VALUES (?, ?, ?)",
		name, snippetsPath, m.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

func returnsRows(query string) bool {
	upper := strings.ToUpper(query)
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func queryRows(ctx context.Context, db *sql.DB, query string) (string, int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, "|"))

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", 0, err
		}
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = formatValue(v)
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(fields, "|"))
		n++
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	return b.String(), n, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
