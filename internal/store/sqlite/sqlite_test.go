package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chanserv/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListEntries(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	// Given
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []*store.Entry{
		{ConnID: 0, SessionID: "s0", Nickname: "User0", Kind: "connected", Recipients: []string{"User0"}, CreatedAt: created},
		{ConnID: 0, SessionID: "s0", Nickname: "User0", Kind: "okay", Command: ":User0 CREATE go 0", Recipients: []string{"User0"}, CreatedAt: created},
		{ConnID: 1, SessionID: "s1", Nickname: "User1", Kind: "error", Command: ":User1 JOIN nope", ErrorCode: "NO_SUCH_CHANNEL", Recipients: []string{"User1"}, CreatedAt: created},
	}

	// When
	for _, e := range entries {
		req.NoError(s.SaveEntry(ctx, e))
	}
	got, err := s.ListEntries(ctx, store.ListFilter{})

	// Then
	req.NoError(err)
	req.Len(got, 3)
	req.Equal("error", got[0].Kind)
	req.Equal("NO_SUCH_CHANNEL", got[0].ErrorCode)
	req.Equal([]string{"User1"}, got[0].Recipients)
	req.Equal(":User0 CREATE go 0", got[1].Command)
	req.Equal("connected", got[2].Kind)
	req.True(created.Equal(got[2].CreatedAt))
	for _, e := range got {
		req.NotEmpty(e.ID)
	}
}

func TestSaveEntryFillsIDAndTime(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	e := &store.Entry{Nickname: "User0", Kind: "connected"}
	req.NoError(s.SaveEntry(context.Background(), e))
	req.NotEmpty(e.ID)
	req.False(e.CreatedAt.IsZero())
}

func TestListEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		nick string
		kind string
	}{
		{"User0", "connected"},
		{"User1", "connected"},
		{"User0", "okay"},
		{"User0", "okay"},
		{"User1", "error"},
	}
	for _, e := range seed {
		if err := s.SaveEntry(ctx, &store.Entry{Nickname: e.nick, Kind: e.kind}); err != nil {
			t.Fatalf("SaveEntry failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.ListFilter
		want   int
	}{
		{name: "all", filter: store.ListFilter{}, want: 5},
		{name: "limit", filter: store.ListFilter{Limit: 2}, want: 2},
		{name: "by kind", filter: store.ListFilter{Kind: "okay"}, want: 2},
		{name: "by nickname", filter: store.ListFilter{Nickname: "User1"}, want: 2},
		{name: "kind and nickname", filter: store.ListFilter{Kind: "okay", Nickname: "User1"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListEntries(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEntries failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, len(got))
			}
		})
	}
}

func TestNewWithSetupError(t *testing.T) {
	_, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec("CREATE TABLE broken (")
		return err
	})
	require.Error(t, err)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := New(path)
	req.NoError(err)
	req.NoError(s.SaveEntry(context.Background(), &store.Entry{Nickname: "User0", Kind: "connected"}))
	req.NoError(s.Close())

	s, err = New(path)
	req.NoError(err)
	defer s.Close()
	got, err := s.ListEntries(context.Background(), store.ListFilter{})
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("User0", got[0].Nickname)
}
