package core

import "sync"

// Delivery addresses one recipient of a broadcast.
type Delivery struct {
	ID       ConnID
	Nickname string
}

// Outcome is a broadcast together with the connections it must reach,
// resolved while the model was still locked.
type Outcome struct {
	Broadcast  Broadcast
	Deliveries []Delivery
}

// Stats counts what the model currently holds.
type Stats struct {
	Users    int
	Channels int
}

// Session guards a Model with a single lock spanning each whole operation,
// so no caller ever observes a half-applied command.
type Session struct {
	mu    sync.Mutex
	model *Model
}

// NewSession wraps a fresh model.
func NewSession() *Session {
	return &Session{model: NewModel()}
}

// Connect registers a connection and addresses the CONNECTED broadcast to it.
func (s *Session) Connect(id ConnID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.model.RegisterUser(id)
	return Outcome{
		Broadcast:  b,
		Deliveries: []Delivery{{ID: id, Nickname: b.Nickname}},
	}
}

// Disconnect deregisters a connection and addresses its channel mates.
func (s *Session) Disconnect(id ConnID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.model.DeregisterUser(id)
	return Outcome{Broadcast: b, Deliveries: s.resolve(b.Recipients)}
}

// Dispatch applies cmd. Errors are addressed to the issuing connection only.
func (s *Session) Dispatch(cmd Command) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := cmd.Apply(s.model)
	if b.IsError() {
		return Outcome{
			Broadcast:  b,
			Deliveries: []Delivery{{ID: cmd.SenderID(), Nickname: cmd.Sender()}},
		}
	}
	return Outcome{Broadcast: b, Deliveries: s.resolve(b.Recipients)}
}

// View runs fn with exclusive access to the model. fn must not retain it.
func (s *Session) View(fn func(m *Model)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.model)
}

// Nickname returns the current nickname of a connection.
func (s *Session) Nickname(id ConnID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Nickname(id)
}

// Stats returns current counts.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Users:    len(s.model.users.byID),
		Channels: len(s.model.channels.byName),
	}
}

func (s *Session) resolve(nicknames []string) []Delivery {
	out := make([]Delivery, 0, len(nicknames))
	for _, nick := range nicknames {
		if id, ok := s.model.UserID(nick); ok {
			out = append(out, Delivery{ID: id, Nickname: nick})
		}
	}
	return out
}
