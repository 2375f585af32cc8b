package core

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Observer is told about every outcome the hub produces, after delivery.
type Observer interface {
	Observe(client *Client, outcome Outcome)
}

// HubOptions tune a Hub.
type HubOptions struct {
	// ClientBuffer sizes the Commands and Events channels of new clients.
	ClientBuffer int
	Observers    []Observer
	// OnDrop is called when an event is dropped for a slow client.
	OnDrop func(id ConnID)
}

type inbound struct {
	client *Client
	cmd    Command
}

// Hub serializes every registration, command and deregistration through one
// goroutine and fans the resulting broadcasts out to client event channels.
type Hub struct {
	session *Session
	log     *zerolog.Logger
	opts    HubOptions

	nextID     atomic.Int64
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	done       chan struct{}

	// owned by Run
	clients map[ConnID]*Client
}

// NewHub creates a hub over session. A nil logger disables logging.
func NewHub(session *Session, logger *zerolog.Logger, opts HubOptions) *Hub {
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		session:    session,
		log:        logger,
		opts:       opts,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		done:       make(chan struct{}),
		clients:    make(map[ConnID]*Client),
	}
}

// Session returns the guarded model behind the hub.
func (h *Hub) Session() *Session {
	return h.session
}

// NewClient allocates a client with a fresh connection id.
func (h *Hub) NewClient() *Client {
	return NewClient(ConnID(h.nextID.Add(1)-1), h.opts.ClientBuffer)
}

// RegisterClient hands a new connection to the hub. Its CONNECTED event
// arrives on client.Events.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient removes a connection. Its Events channel is closed once
// the hub has processed the removal.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes hub traffic until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case in := <-h.inbound:
			h.handleCommand(in.client, in.cmd)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warn().Int64("conn_id", int64(c.ID)).Msg("client already registered")
		return
	}
	h.clients[c.ID] = c
	outcome := h.session.Connect(c.ID)
	h.log.Info().
		Int64("conn_id", int64(c.ID)).
		Str("session_id", c.SessionID).
		Str("nickname", outcome.Broadcast.Nickname).
		Msg("client connected")
	h.deliver(outcome)
	h.notify(c, outcome)
	go h.pump(c)
}

func (h *Hub) handleUnregister(c *Client) {
	if _, exists := h.clients[c.ID]; !exists {
		return
	}
	delete(h.clients, c.ID)
	close(c.quit)
	outcome := h.session.Disconnect(c.ID)
	close(c.Events)
	h.log.Info().
		Int64("conn_id", int64(c.ID)).
		Str("nickname", outcome.Broadcast.Nickname).
		Int("informed", len(outcome.Deliveries)).
		Msg("client disconnected")
	h.deliver(outcome)
	h.notify(c, outcome)
}

func (h *Hub) handleCommand(c *Client, cmd Command) {
	if _, exists := h.clients[c.ID]; !exists {
		return
	}
	nick, ok := h.session.Nickname(c.ID)
	if !ok {
		return
	}
	cmd = WithOrigin(cmd, Origin{ID: c.ID, Nick: nick})
	outcome := h.session.Dispatch(cmd)

	ev := h.log.Debug()
	if outcome.Broadcast.IsError() {
		ev = h.log.Info().Str("error", outcome.Broadcast.Err.Code())
	}
	ev.Int64("conn_id", int64(c.ID)).
		Str("nickname", nick).
		Str("command", cmd.Keyword()).
		Int("recipients", len(outcome.Deliveries)).
		Msg("command applied")

	h.deliver(outcome)
	h.notify(c, outcome)
}

// pump forwards a client's commands into the hub loop.
func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbound <- inbound{client: c, cmd: cmd}:
			case <-c.quit:
				return
			case <-h.done:
				return
			}
		case <-c.quit:
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(outcome Outcome) {
	for _, d := range outcome.Deliveries {
		c, ok := h.clients[d.ID]
		if !ok {
			continue
		}
		select {
		case c.Events <- outcome.Broadcast:
		default:
			// Drop if slow consumer.
			h.log.Warn().Int64("conn_id", int64(d.ID)).Msg("client event buffer full, dropping")
			if h.opts.OnDrop != nil {
				h.opts.OnDrop(d.ID)
			}
		}
	}
}

func (h *Hub) notify(c *Client, outcome Outcome) {
	for _, o := range h.opts.Observers {
		o.Observe(c, outcome)
	}
}
