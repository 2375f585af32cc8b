package store

import (
	"context"
	"time"
)

// Entry is one audited hub outcome.
type Entry struct {
	ID         string
	ConnID     int64
	SessionID  string
	Nickname   string // sender of the command, or subject of connect/disconnect
	Kind       string // broadcast kind: connected, okay, error, names, disconnected
	Command    string // canonical command text, empty for connect/disconnect
	ErrorCode  string
	Recipients []string
	CreatedAt  time.Time
}

// ListFilter narrows ListEntries.
type ListFilter struct {
	// Limit caps the number of entries; zero means DefaultListLimit.
	Limit    int
	Kind     string
	Nickname string
}

// DefaultListLimit applies when ListFilter.Limit is zero.
const DefaultListLimit = 100

// AuditStore persists hub outcomes.
type AuditStore interface {
	// SaveEntry appends an entry. ID and CreatedAt are filled when empty.
	SaveEntry(ctx context.Context, e *Entry) error

	// ListEntries returns matching entries, newest first.
	ListEntries(ctx context.Context, f ListFilter) ([]*Entry, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	AuditStore

	// Close closes the underlying database connection.
	Close() error
}
