package core

// Model tracks registered users and the channels they occupy. Every
// operation either mutates state completely or not at all.
//
// Model is not safe for concurrent use; see Session.
type Model struct {
	users    *userRegistry
	channels *channelRegistry
}

// NewModel constructs an empty model.
func NewModel() *Model {
	return &Model{
		users:    newUserRegistry(),
		channels: newChannelRegistry(),
	}
}

// ==== Connection lifecycle ====

// RegisterUser records a new connection under the smallest free "UserN"
// nickname and returns the CONNECTED broadcast for it.
func (m *Model) RegisterUser(id ConnID) Broadcast {
	nickname := nextNickname(m.users.taken)
	m.users.add(newUser(id, nickname))
	return Connected(nickname)
}

// DeregisterUser removes the user from every channel it belongs to,
// destroying channels it owns, and forgets the user. The broadcast informs
// everyone who shared a channel with it.
func (m *Model) DeregisterUser(id ConnID) Broadcast {
	u, ok := m.users.get(id)
	if !ok {
		return Disconnected("", nil)
	}

	var informed []string
	for _, name := range u.Channels() {
		ch, ok := m.channels.get(name)
		if !ok {
			continue
		}
		informed = append(informed, ch.Nicknames()...)
		m.removeFromChannel(ch, id)
	}
	m.users.remove(id)

	informed = without(informed, u.Nickname)
	return Disconnected(u.Nickname, informed)
}

// ==== Mutations ====

// ChangeNickname renames the user everywhere it appears. The caller is
// responsible for validating the new nickname.
func (m *Model) ChangeNickname(nickname string, id ConnID) {
	u := m.users.rename(id, nickname)
	if u == nil {
		return
	}
	for name := range u.channels {
		if ch, ok := m.channels.get(name); ok {
			ch.renameMember(id, nickname)
		}
	}
}

// CreateChannel creates a channel owned by, and containing only, the given user.
func (m *Model) CreateChannel(owner ConnID, name string, inviteOnly bool) {
	u, ok := m.users.get(owner)
	if !ok {
		return
	}
	ch := newChannel(name, owner, inviteOnly)
	m.channels.add(ch)
	m.join(ch, u)
}

// AddUserToChannel makes the user a member of the channel. Adding an existing
// member is a no-op.
func (m *Model) AddUserToChannel(name string, id ConnID) {
	ch, ok := m.channels.get(name)
	if !ok {
		return
	}
	u, ok := m.users.get(id)
	if !ok {
		return
	}
	m.join(ch, u)
}

// RemoveUserFromChannel takes the user out of the channel. If the user owns
// the channel, the channel is destroyed for every member.
func (m *Model) RemoveUserFromChannel(id ConnID, name string) {
	ch, ok := m.channels.get(name)
	if !ok {
		return
	}
	m.removeFromChannel(ch, id)
}

func (m *Model) join(ch *Channel, u *User) {
	ch.addMember(u.ID, u.Nickname)
	u.channels[ch.Name] = struct{}{}
}

func (m *Model) removeFromChannel(ch *Channel, id ConnID) {
	if id == ch.owner {
		m.destroyChannel(ch)
		return
	}
	ch.removeMember(id)
	if u, ok := m.users.get(id); ok {
		delete(u.channels, ch.Name)
	}
}

func (m *Model) destroyChannel(ch *Channel) {
	for _, id := range ch.memberIDs() {
		if u, ok := m.users.get(id); ok {
			delete(u.channels, ch.Name)
		}
		ch.removeMember(id)
	}
	m.channels.remove(ch.Name)
}

// ==== Queries ====

// ChannelExists reports whether a channel with the name exists.
func (m *Model) ChannelExists(name string) bool {
	_, ok := m.channels.get(name)
	return ok
}

// IsInviteOnly reports whether the channel exists and is invite-only.
func (m *Model) IsInviteOnly(name string) bool {
	ch, ok := m.channels.get(name)
	return ok && ch.InviteOnly
}

// Owner returns the current nickname of the channel owner.
func (m *Model) Owner(name string) (string, bool) {
	ch, ok := m.channels.get(name)
	if !ok {
		return "", false
	}
	return ch.members[ch.owner], true
}

// IsOwner reports whether the connection owns the channel.
func (m *Model) IsOwner(name string, id ConnID) bool {
	ch, ok := m.channels.get(name)
	return ok && ch.owner == id
}

// IsMember reports whether the connection is a member of the channel.
func (m *Model) IsMember(name string, id ConnID) bool {
	ch, ok := m.channels.get(name)
	return ok && ch.hasMember(id)
}

// ChannelRecipients returns the member nicknames of one channel, sorted.
func (m *Model) ChannelRecipients(name string) []string {
	ch, ok := m.channels.get(name)
	if !ok {
		return []string{}
	}
	return ch.Nicknames()
}

// RecipientsInAllChannels returns the sorted union of members and owners of
// every channel the user belongs to.
func (m *Model) RecipientsInAllChannels(id ConnID) []string {
	u, ok := m.users.get(id)
	if !ok {
		return []string{}
	}
	var names []string
	for name := range u.channels {
		ch, ok := m.channels.get(name)
		if !ok {
			continue
		}
		names = append(names, ch.Nicknames()...)
		names = append(names, ch.members[ch.owner])
	}
	return recipientSet(names)
}

// UserExists reports whether a registered user has the nickname.
func (m *Model) UserExists(nickname string) bool {
	return m.users.taken(nickname)
}

// UserID returns the connection registered under the nickname.
func (m *Model) UserID(nickname string) (ConnID, bool) {
	u, ok := m.users.lookup(nickname)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// Nickname returns the nickname registered for the connection.
func (m *Model) Nickname(id ConnID) (string, bool) {
	u, ok := m.users.get(id)
	if !ok {
		return "", false
	}
	return u.Nickname, true
}

// RegisteredUsers returns every registered nickname, sorted.
func (m *Model) RegisteredUsers() []string {
	return m.users.nicknames()
}

// Channels returns every channel name, sorted.
func (m *Model) Channels() []string {
	return m.channels.names()
}

// Members returns the member nicknames of a channel, or an empty slice if it
// does not exist.
func (m *Model) Members(name string) []string {
	return m.ChannelRecipients(name)
}

// UserChannels returns the channels the connection belongs to, sorted.
func (m *Model) UserChannels(id ConnID) []string {
	u, ok := m.users.get(id)
	if !ok {
		return []string{}
	}
	return u.Channels()
}

// ChannelInfo is a read-only view of one channel.
type ChannelInfo struct {
	Name       string
	Owner      string
	InviteOnly bool
	Members    []string
}

// Channel returns a snapshot of the named channel.
func (m *Model) Channel(name string) (ChannelInfo, bool) {
	ch, ok := m.channels.get(name)
	if !ok {
		return ChannelInfo{}, false
	}
	return ChannelInfo{
		Name:       ch.Name,
		Owner:      ch.members[ch.owner],
		InviteOnly: ch.InviteOnly,
		Members:    ch.Nicknames(),
	}, true
}
