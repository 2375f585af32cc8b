package core

import "github.com/google/uuid"

const defaultClientBuffer = 16

// Client is a connection as seen by the hub. The transport writes parsed
// commands to Commands and drains Events until it is closed.
type Client struct {
	ID ConnID
	// SessionID correlates log lines and audit entries of one connection.
	SessionID string
	Commands  chan Command
	Events    chan Broadcast

	quit chan struct{}
}

// NewClient constructs a client with buffered channels.
func NewClient(id ConnID, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:        id,
		SessionID: uuid.NewString(),
		Commands:  make(chan Command, buffer),
		Events:    make(chan Broadcast, buffer),
		quit:      make(chan struct{}),
	}
}
