package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/chanserv/internal/store"
)

// Schema creates the audit tables. It is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS audit_entries (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		conn_id    INTEGER NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		nickname   TEXT NOT NULL DEFAULT '',
		kind       TEXT NOT NULL,
		command    TEXT NOT NULL DEFAULT '',
		error_code TEXT NOT NULL DEFAULT '',
		recipients TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_nickname ON audit_entries(nickname);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_kind ON audit_entries(kind);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== AuditStore implementation ====

// SaveEntry appends an audit entry.
func (s *SQLiteStore) SaveEntry(ctx context.Context, e *store.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_entries (id, conn_id, session_id, nickname, kind, command, error_code, recipients, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.ConnID,
		e.SessionID,
		e.Nickname,
		e.Kind,
		e.Command,
		e.ErrorCode,
		strings.Join(e.Recipients, " "),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListEntries returns matching entries, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, f store.ListFilter) ([]*store.Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Nickname != "" {
		where = append(where, "nickname = ?")
		args = append(args, f.Nickname)
	}

	query := `
		SELECT id, conn_id, session_id, nickname, kind, command, error_code, recipients, created_at
		FROM audit_entries
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*store.Entry
	for rows.Next() {
		var (
			e          store.Entry
			recipients string
		)
		if err := rows.Scan(
			&e.ID,
			&e.ConnID,
			&e.SessionID,
			&e.Nickname,
			&e.Kind,
			&e.Command,
			&e.ErrorCode,
			&recipients,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Recipients = strings.Fields(recipients)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
