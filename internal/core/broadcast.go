package core

import (
	"slices"

	"github.com/samber/lo"
)

// BroadcastKind tells the transport what kind of notification to deliver.
type BroadcastKind int

const (
	// BroadcastConnected tells a new user its assigned nickname.
	BroadcastConnected BroadcastKind = iota
	// BroadcastOkay echoes a successful command to its recipients.
	BroadcastOkay
	// BroadcastError reports a refused command to its sender only.
	BroadcastError
	// BroadcastNames echoes a join or invite together with the channel owner.
	BroadcastNames
	// BroadcastDisconnected tells channel mates that a user left the server.
	BroadcastDisconnected
)

func (k BroadcastKind) String() string {
	switch k {
	case BroadcastConnected:
		return "connected"
	case BroadcastOkay:
		return "okay"
	case BroadcastError:
		return "error"
	case BroadcastNames:
		return "names"
	case BroadcastDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Broadcast is the outcome of a model operation: who must be told, and what.
// Recipients are always sorted and duplicate-free.
type Broadcast struct {
	Kind       BroadcastKind
	Command    Command // nil for connected and disconnected
	Nickname   string  // subject of connected and disconnected
	Owner      string  // names only
	Err        ServerError
	Recipients []string
}

// Connected builds the broadcast sent to a freshly registered user.
func Connected(nickname string) Broadcast {
	return Broadcast{
		Kind:       BroadcastConnected,
		Nickname:   nickname,
		Recipients: []string{nickname},
	}
}

// Okay echoes cmd to recipients.
func Okay(cmd Command, recipients []string) Broadcast {
	return Broadcast{
		Kind:       BroadcastOkay,
		Command:    cmd,
		Recipients: recipientSet(recipients),
	}
}

// Error reports err to the sender of cmd.
func Error(cmd Command, err ServerError) Broadcast {
	return Broadcast{
		Kind:       BroadcastError,
		Command:    cmd,
		Err:        err,
		Recipients: []string{cmd.Sender()},
	}
}

// Names echoes cmd to recipients and names the channel owner.
func Names(cmd Command, recipients []string, owner string) Broadcast {
	return Broadcast{
		Kind:       BroadcastNames,
		Command:    cmd,
		Owner:      owner,
		Recipients: recipientSet(recipients),
	}
}

// Disconnected tells recipients that nickname left the server.
func Disconnected(nickname string, recipients []string) Broadcast {
	return Broadcast{
		Kind:       BroadcastDisconnected,
		Nickname:   nickname,
		Recipients: recipientSet(recipients),
	}
}

// Equal reports whether two broadcasts carry the same notification.
func (b Broadcast) Equal(other Broadcast) bool {
	return b.Kind == other.Kind &&
		b.Command == other.Command &&
		b.Nickname == other.Nickname &&
		b.Owner == other.Owner &&
		b.Err == other.Err &&
		slices.Equal(b.Recipients, other.Recipients)
}

// IsError reports whether the broadcast refuses a command.
func (b Broadcast) IsError() bool {
	return b.Kind == BroadcastError
}

func recipientSet(names []string) []string {
	set := lo.Uniq(names)
	slices.Sort(set)
	return set
}

func without(names []string, drop string) []string {
	return lo.Without(names, drop)
}
