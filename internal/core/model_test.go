package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterUserAssignsSmallestFreeNickname(t *testing.T) {
	req := require.New(t)
	model := NewModel()

	req.Equal(Connected("User0"), model.RegisterUser(10))
	req.Equal(Connected("User1"), model.RegisterUser(11))
	req.Equal(Connected("User2"), model.RegisterUser(12))

	// Free User1 by renaming, then the next registration reuses it.
	model.ChangeNickname("bob", 11)
	req.Equal(Connected("User1"), model.RegisterUser(13))

	// Free User0 by deregistering.
	model.DeregisterUser(10)
	req.Equal(Connected("User0"), model.RegisterUser(14))

	req.Equal([]string{"User0", "User1", "User2", "bob"}, model.RegisteredUsers())
}

func TestRegisterUserSkipsTakenNickname(t *testing.T) {
	req := require.New(t)
	model := newTestModel(1)

	// User0 renames itself to User1; the next user must get User0, then User2.
	model.ChangeNickname("User1", 0)
	req.Equal(Connected("User0"), model.RegisterUser(1))
	req.Equal(Connected("User2"), model.RegisterUser(2))
}

func TestDeregisterCascades(t *testing.T) {
	req := require.New(t)
	model := newTestModel(4)

	// Given User0 owns java (User1, User2) and is a member of rust (owned by User1)
	NewCreateCommand(0, "User0", "java", false).Apply(model)
	NewJoinCommand(1, "User1", "java").Apply(model)
	NewJoinCommand(2, "User2", "java").Apply(model)
	NewCreateCommand(1, "User1", "rust", false).Apply(model)
	NewJoinCommand(0, "User0", "rust").Apply(model)
	NewCreateCommand(3, "User3", "lonely", false).Apply(model)

	// When User0 disconnects
	got := model.DeregisterUser(0)

	// Then its channel mates are told, its channel is gone and rust survives
	req.Equal(Disconnected("User0", []string{"User1", "User2"}), got)
	req.False(model.ChannelExists("java"))
	req.True(model.ChannelExists("rust"))
	req.Equal([]string{"User1"}, model.Members("rust"))
	req.Equal([]string{"rust"}, model.UserChannels(1))
	req.Empty(model.UserChannels(2))
	req.False(model.UserExists("User0"))
	req.Equal([]string{"lonely", "rust"}, model.Channels())
}

func TestDeregisterWithoutChannels(t *testing.T) {
	req := require.New(t)
	model := newTestModel(2)

	req.Equal(Disconnected("User1", nil), model.DeregisterUser(1))
	req.Equal([]string{"User0"}, model.RegisteredUsers())
}

func TestDeregisterUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	model := newTestModel(1)

	got := model.DeregisterUser(42)
	req.Equal(BroadcastDisconnected, got.Kind)
	req.Empty(got.Recipients)
	req.Equal([]string{"User0"}, model.RegisteredUsers())
}

func TestRecipientsInAllChannelsDeduplicates(t *testing.T) {
	req := require.New(t)
	model := newTestModel(3)

	NewCreateCommand(0, "User0", "a", false).Apply(model)
	NewCreateCommand(0, "User0", "b", false).Apply(model)
	NewJoinCommand(1, "User1", "a").Apply(model)
	NewJoinCommand(1, "User1", "b").Apply(model)
	NewJoinCommand(2, "User2", "b").Apply(model)

	req.Equal([]string{"User0", "User1", "User2"}, model.RecipientsInAllChannels(1))
	req.Equal([]string{"User0", "User1"}, model.ChannelRecipients("a"))
	req.Empty(model.ChannelRecipients("ghost"))
	req.Empty(model.RecipientsInAllChannels(99))
}

func TestQueriesOnMissingChannel(t *testing.T) {
	req := require.New(t)
	model := newTestModel(1)

	req.False(model.ChannelExists("ghost"))
	req.False(model.IsInviteOnly("ghost"))
	req.False(model.IsOwner("ghost", 0))
	req.False(model.IsMember("ghost", 0))
	_, ok := model.Owner("ghost")
	req.False(ok)
	_, ok = model.Channel("ghost")
	req.False(ok)
	req.Empty(model.Members("ghost"))
}

// TestModelConsistencyUnderRandomTraffic replays a deterministic mix of commands and
// checks that users and channels agree after each one.
func TestMembershipChangesAreIdempotent(t *testing.T) {
	req := require.New(t)
	model := newTestModel(2)
	model.CreateChannel(0, "java", false)

	// Joining twice keeps one membership.
	model.AddUserToChannel("java", 1)
	model.AddUserToChannel("java", 1)
	req.Equal([]string{"User0", "User1"}, model.Members("java"))

	// Removing twice is harmless and leaves the owner in place.
	model.RemoveUserFromChannel(1, "java")
	model.RemoveUserFromChannel(1, "java")
	req.Equal([]string{"User0"}, model.Members("java"))
	req.Empty(model.UserChannels(1))
	assertConsistent(t, model)
}

func TestModelConsistencyUnderRandomTraffic(t *testing.T) {
	model := newTestModel(5)
	channels := []string{"a", "b", "c"}

	for step := 0; step < 500; step++ {
		id := ConnID(step % 5)
		nick, _ := model.Nickname(id)
		ch := channels[(step/5)%len(channels)]
		target := fmt.Sprintf("User%d", (step*7)%5)

		var cmd Command
		switch step % 7 {
		case 0:
			cmd = NewCreateCommand(id, nick, ch, step%2 == 0)
		case 1:
			cmd = NewJoinCommand(id, nick, ch)
		case 2:
			cmd = NewInviteCommand(id, nick, ch, target)
		case 3:
			cmd = NewMessageCommand(id, nick, ch, "hi")
		case 4:
			cmd = NewKickCommand(id, nick, ch, target)
		case 5:
			cmd = NewLeaveCommand(id, nick, ch)
		case 6:
			cmd = NewNicknameCommand(id, nick, fmt.Sprintf("n%d", step%11))
		}
		cmd.Apply(model)
		assertConsistent(t, model)
	}
}

func assertConsistent(t *testing.T, m *Model) {
	t.Helper()
	req := require.New(t)

	seen := make(map[string]bool)
	for id, u := range m.users.byID {
		req.False(seen[u.Nickname], "duplicate nickname %s", u.Nickname)
		seen[u.Nickname] = true
		req.Equal(id, m.users.byNick[u.Nickname])
		for name := range u.channels {
			ch, ok := m.channels.get(name)
			req.True(ok, "user %s lists missing channel %s", u.Nickname, name)
			req.Equal(u.Nickname, ch.members[id])
		}
	}
	req.Len(m.users.byNick, len(m.users.byID))

	for name, ch := range m.channels.byName {
		req.Equal(name, ch.Name)
		req.True(ch.hasMember(ch.owner), "owner of %s is not a member", name)
		for id := range ch.members {
			u, ok := m.users.get(id)
			req.True(ok)
			req.True(u.InChannel(name))
		}
	}
}
