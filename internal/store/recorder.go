package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/core"
)

const defaultRecorderBuffer = 256

// Recorder is a hub observer that writes every outcome to an AuditStore
// from its own goroutine. Entries are dropped when the queue is full.
type Recorder struct {
	store AuditStore
	log   *zerolog.Logger
	queue chan *Entry
	now   func() time.Time
}

// NewRecorder creates a recorder with a queue of the given size.
func NewRecorder(s AuditStore, logger *zerolog.Logger, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = defaultRecorderBuffer
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{
		store: s,
		log:   logger,
		queue: make(chan *Entry, buffer),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Observe implements core.Observer.
func (r *Recorder) Observe(c *core.Client, outcome core.Outcome) {
	e := EntryFromOutcome(c, outcome)
	e.ID = uuid.NewString()
	e.CreatedAt = r.now()
	select {
	case r.queue <- e:
	default:
		r.log.Warn().Int64("conn_id", e.ConnID).Str("kind", e.Kind).Msg("audit queue full, dropping entry")
	}
}

// Run writes queued entries until ctx is canceled, then flushes what is
// already queued.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case e := <-r.queue:
			r.save(ctx, e)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case e := <-r.queue:
			r.save(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, e *Entry) {
	if err := r.store.SaveEntry(ctx, e); err != nil {
		r.log.Error().Err(err).Str("entry_id", e.ID).Msg("failed to save audit entry")
	}
}

// EntryFromOutcome converts a hub outcome into an audit entry without
// ID or timestamp.
func EntryFromOutcome(c *core.Client, outcome core.Outcome) *Entry {
	b := outcome.Broadcast
	e := &Entry{
		Kind:     b.Kind.String(),
		Nickname: b.Nickname,
	}
	if c != nil {
		e.ConnID = int64(c.ID)
		e.SessionID = c.SessionID
	}
	if b.Command != nil {
		e.Nickname = b.Command.Sender()
		e.Command = b.Command.String()
	}
	if b.IsError() {
		e.ErrorCode = b.Err.Code()
	}
	for _, d := range outcome.Deliveries {
		e.Recipients = append(e.Recipients, d.Nickname)
	}
	return e
}
