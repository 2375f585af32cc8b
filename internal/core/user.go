package core

import (
	"slices"

	"github.com/samber/lo"
)

// ConnID identifies a connection. The transport assigns it once and never
// reuses it while the user is registered.
type ConnID int64

// User is a registered participant.
type User struct {
	ID       ConnID
	Nickname string
	channels map[string]struct{}
}

func newUser(id ConnID, nickname string) *User {
	return &User{
		ID:       id,
		Nickname: nickname,
		channels: make(map[string]struct{}),
	}
}

// Channels returns the names of the channels the user belongs to, sorted.
func (u *User) Channels() []string {
	names := lo.Keys(u.channels)
	slices.Sort(names)
	return names
}

// InChannel reports whether the user's joined set contains the channel.
func (u *User) InChannel(name string) bool {
	_, ok := u.channels[name]
	return ok
}

// userRegistry indexes users by connection and by nickname.
type userRegistry struct {
	byID   map[ConnID]*User
	byNick map[string]ConnID
}

func newUserRegistry() *userRegistry {
	return &userRegistry{
		byID:   make(map[ConnID]*User),
		byNick: make(map[string]ConnID),
	}
}

func (r *userRegistry) add(u *User) {
	r.byID[u.ID] = u
	r.byNick[u.Nickname] = u.ID
}

func (r *userRegistry) remove(id ConnID) *User {
	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	delete(r.byNick, u.Nickname)
	return u
}

func (r *userRegistry) get(id ConnID) (*User, bool) {
	u, ok := r.byID[id]
	return u, ok
}

func (r *userRegistry) lookup(nickname string) (*User, bool) {
	id, ok := r.byNick[nickname]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

func (r *userRegistry) taken(nickname string) bool {
	_, ok := r.byNick[nickname]
	return ok
}

func (r *userRegistry) rename(id ConnID, nickname string) *User {
	u, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byNick, u.Nickname)
	u.Nickname = nickname
	r.byNick[nickname] = id
	return u
}

func (r *userRegistry) nicknames() []string {
	names := lo.Keys(r.byNick)
	slices.Sort(names)
	return names
}
