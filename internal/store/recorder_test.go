package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chanserv/internal/core"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []*Entry
}

func (m *memoryStore) SaveEntry(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryStore) ListEntries(_ context.Context, _ ListFilter) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Entry(nil), m.entries...), nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestEntryFromOutcome(t *testing.T) {
	req := require.New(t)
	client := core.NewClient(3, 1)

	// Given a command outcome
	cmd := core.NewMessageCommand(3, "User3", "go", "hi there")
	outcome := core.Outcome{
		Broadcast:  core.Okay(cmd, []string{"User3", "User4"}),
		Deliveries: []core.Delivery{{ID: 3, Nickname: "User3"}, {ID: 4, Nickname: "User4"}},
	}

	// When
	e := EntryFromOutcome(client, outcome)

	// Then
	req.Equal(int64(3), e.ConnID)
	req.Equal(client.SessionID, e.SessionID)
	req.Equal("User3", e.Nickname)
	req.Equal("okay", e.Kind)
	req.Equal(":User3 MESG go :hi there", e.Command)
	req.Empty(e.ErrorCode)
	req.Equal([]string{"User3", "User4"}, e.Recipients)
}

func TestEntryFromErrorOutcome(t *testing.T) {
	req := require.New(t)

	cmd := core.NewJoinCommand(1, "User1", "nope")
	outcome := core.Outcome{
		Broadcast:  core.Error(cmd, core.ErrNoSuchChannel),
		Deliveries: []core.Delivery{{ID: 1, Nickname: "User1"}},
	}

	e := EntryFromOutcome(core.NewClient(1, 1), outcome)
	req.Equal("error", e.Kind)
	req.Equal("NO_SUCH_CHANNEL", e.ErrorCode)
	req.Equal(":User1 JOIN nope", e.Command)
}

func TestEntryFromConnected(t *testing.T) {
	outcome := core.Outcome{
		Broadcast:  core.Connected("User0"),
		Deliveries: []core.Delivery{{ID: 0, Nickname: "User0"}},
	}

	e := EntryFromOutcome(core.NewClient(0, 1), outcome)
	require.Equal(t, "User0", e.Nickname)
	require.Equal(t, "connected", e.Kind)
	require.Empty(t, e.Command)
}

func TestRecorderWritesObservedOutcomes(t *testing.T) {
	req := require.New(t)
	mem := &memoryStore{}
	rec := NewRecorder(mem, nil, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	client := core.NewClient(0, 1)
	rec.Observe(client, core.Outcome{Broadcast: core.Connected("User0")})
	rec.Observe(client, core.Outcome{Broadcast: core.Disconnected("User0", nil)})

	req.Eventually(func() bool { return mem.count() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	entries, err := mem.ListEntries(context.Background(), ListFilter{})
	req.NoError(err)
	req.Equal("connected", entries[0].Kind)
	req.Equal("disconnected", entries[1].Kind)
	req.NotEqual(entries[0].ID, entries[1].ID)
	req.False(entries[0].CreatedAt.IsZero())
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	mem := &memoryStore{}
	rec := NewRecorder(mem, nil, 1)
	client := core.NewClient(0, 1)

	// Run is not started, so only the first entry fits.
	rec.Observe(client, core.Outcome{Broadcast: core.Connected("User0")})
	rec.Observe(client, core.Outcome{Broadcast: core.Connected("User1")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	require.Equal(t, 1, mem.count())
}
