package core

import (
	"slices"

	"github.com/samber/lo"
)

// Channel groups users under an owner. Name, owner and InviteOnly are fixed
// at creation.
type Channel struct {
	Name       string
	InviteOnly bool
	owner      ConnID
	members    map[ConnID]string
}

func newChannel(name string, owner ConnID, inviteOnly bool) *Channel {
	return &Channel{
		Name:       name,
		InviteOnly: inviteOnly,
		owner:      owner,
		members:    make(map[ConnID]string),
	}
}

// addMember inserts or refreshes a member.
func (c *Channel) addMember(id ConnID, nickname string) {
	c.members[id] = nickname
}

func (c *Channel) removeMember(id ConnID) {
	delete(c.members, id)
}

func (c *Channel) renameMember(id ConnID, nickname string) {
	if _, exists := c.members[id]; exists {
		c.members[id] = nickname
	}
}

func (c *Channel) hasMember(id ConnID) bool {
	_, ok := c.members[id]
	return ok
}

func (c *Channel) memberIDs() []ConnID {
	ids := lo.Keys(c.members)
	slices.Sort(ids)
	return ids
}

// Nicknames returns member nicknames in lexicographic order.
func (c *Channel) Nicknames() []string {
	names := lo.Values(c.members)
	slices.Sort(names)
	return names
}

// channelRegistry indexes channels by name.
type channelRegistry struct {
	byName map[string]*Channel
}

func newChannelRegistry() *channelRegistry {
	return &channelRegistry{byName: make(map[string]*Channel)}
}

func (r *channelRegistry) add(c *Channel) {
	r.byName[c.Name] = c
}

func (r *channelRegistry) get(name string) (*Channel, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *channelRegistry) remove(name string) {
	delete(r.byName, name)
}

func (r *channelRegistry) names() []string {
	names := lo.Keys(r.byName)
	slices.Sort(names)
	return names
}
