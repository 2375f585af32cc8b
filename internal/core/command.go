package core

import "fmt"

// Command is a client request after parsing. The set of implementations is
// closed: NicknameCommand, CreateCommand, JoinCommand, MessageCommand,
// LeaveCommand, InviteCommand and KickCommand.
//
// Commands are comparable values; two commands are equal when all their
// fields are equal. String returns the canonical wire rendering.
type Command interface {
	SenderID() ConnID
	Sender() string
	// Keyword is the uppercase protocol verb.
	Keyword() string
	// Apply checks preconditions in order and, on success, mutates the model
	// once. It never returns an error: refusals become ERROR broadcasts.
	Apply(m *Model) Broadcast
	String() string

	withOrigin(o Origin) Command
}

// ChannelCommand is implemented by commands addressed to a channel.
type ChannelCommand interface {
	Command
	ChannelName() string
}

// Origin identifies who issued a command.
type Origin struct {
	ID   ConnID
	Nick string
}

// SenderID returns the issuing connection.
func (o Origin) SenderID() ConnID { return o.ID }

// Sender returns the issuing nickname at the time the command was issued.
func (o Origin) Sender() string { return o.Nick }

// WithOrigin returns a copy of cmd issued by o.
func WithOrigin(cmd Command, o Origin) Command {
	return cmd.withOrigin(o)
}

// NicknameCommand changes the sender's nickname.
type NicknameCommand struct {
	Origin
	NewNickname string
}

// NewNicknameCommand builds a NICK command.
func NewNicknameCommand(id ConnID, sender, newNickname string) NicknameCommand {
	return NicknameCommand{Origin: Origin{ID: id, Nick: sender}, NewNickname: newNickname}
}

func (c NicknameCommand) Keyword() string { return "NICK" }

func (c NicknameCommand) Apply(m *Model) Broadcast {
	if !IsValidName(c.NewNickname) {
		return Error(c, ErrInvalidName)
	}
	if m.UserExists(c.NewNickname) {
		return Error(c, ErrNameAlreadyInUse)
	}
	m.ChangeNickname(c.NewNickname, c.ID)
	return Okay(c, m.RecipientsInAllChannels(c.ID))
}

func (c NicknameCommand) String() string {
	return fmt.Sprintf(":%s NICK %s", c.Nick, c.NewNickname)
}

func (c NicknameCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// CreateCommand creates a channel owned by the sender.
type CreateCommand struct {
	Origin
	Channel    string
	InviteOnly bool
}

// NewCreateCommand builds a CREATE command.
func NewCreateCommand(id ConnID, sender, channel string, inviteOnly bool) CreateCommand {
	return CreateCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel, InviteOnly: inviteOnly}
}

func (c CreateCommand) Keyword() string     { return "CREATE" }
func (c CreateCommand) ChannelName() string { return c.Channel }

func (c CreateCommand) Apply(m *Model) Broadcast {
	if !IsValidName(c.Channel) {
		return Error(c, ErrInvalidName)
	}
	if m.ChannelExists(c.Channel) {
		return Error(c, ErrChannelAlreadyExists)
	}
	m.CreateChannel(c.ID, c.Channel, c.InviteOnly)
	return Okay(c, m.ChannelRecipients(c.Channel))
}

func (c CreateCommand) String() string {
	flag := 0
	if c.InviteOnly {
		flag = 1
	}
	return fmt.Sprintf(":%s CREATE %s %d", c.Nick, c.Channel, flag)
}

func (c CreateCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// JoinCommand adds the sender to a public channel.
type JoinCommand struct {
	Origin
	Channel string
}

// NewJoinCommand builds a JOIN command.
func NewJoinCommand(id ConnID, sender, channel string) JoinCommand {
	return JoinCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel}
}

func (c JoinCommand) Keyword() string     { return "JOIN" }
func (c JoinCommand) ChannelName() string { return c.Channel }

func (c JoinCommand) Apply(m *Model) Broadcast {
	if !m.ChannelExists(c.Channel) {
		return Error(c, ErrNoSuchChannel)
	}
	if m.IsInviteOnly(c.Channel) {
		return Error(c, ErrJoinPrivateChannel)
	}
	m.AddUserToChannel(c.Channel, c.ID)
	owner, _ := m.Owner(c.Channel)
	return Names(c, m.ChannelRecipients(c.Channel), owner)
}

func (c JoinCommand) String() string {
	return fmt.Sprintf(":%s JOIN %s", c.Nick, c.Channel)
}

func (c JoinCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// MessageCommand relays text to every member of a channel.
type MessageCommand struct {
	Origin
	Channel string
	Text    string
}

// NewMessageCommand builds a MESG command.
func NewMessageCommand(id ConnID, sender, channel, text string) MessageCommand {
	return MessageCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel, Text: text}
}

func (c MessageCommand) Keyword() string     { return "MESG" }
func (c MessageCommand) ChannelName() string { return c.Channel }

func (c MessageCommand) Apply(m *Model) Broadcast {
	if !m.ChannelExists(c.Channel) {
		return Error(c, ErrNoSuchChannel)
	}
	if !m.IsMember(c.Channel, c.ID) {
		return Error(c, ErrUserNotInChannel)
	}
	return Okay(c, m.ChannelRecipients(c.Channel))
}

func (c MessageCommand) String() string {
	return fmt.Sprintf(":%s MESG %s :%s", c.Nick, c.Channel, c.Text)
}

func (c MessageCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// LeaveCommand removes the sender from a channel. An owner leaving destroys it.
type LeaveCommand struct {
	Origin
	Channel string
}

// NewLeaveCommand builds a LEAVE command.
func NewLeaveCommand(id ConnID, sender, channel string) LeaveCommand {
	return LeaveCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel}
}

func (c LeaveCommand) Keyword() string     { return "LEAVE" }
func (c LeaveCommand) ChannelName() string { return c.Channel }

func (c LeaveCommand) Apply(m *Model) Broadcast {
	if !m.ChannelExists(c.Channel) {
		return Error(c, ErrNoSuchChannel)
	}
	if !m.IsMember(c.Channel, c.ID) {
		return Error(c, ErrUserNotInChannel)
	}
	// The departing user is told too.
	recipients := m.ChannelRecipients(c.Channel)
	m.RemoveUserFromChannel(c.ID, c.Channel)
	return Okay(c, recipients)
}

func (c LeaveCommand) String() string {
	return fmt.Sprintf(":%s LEAVE %s", c.Nick, c.Channel)
}

func (c LeaveCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// InviteCommand lets a channel owner add a user to an invite-only channel.
type InviteCommand struct {
	Origin
	Channel string
	Target  string
}

// NewInviteCommand builds an INVITE command.
func NewInviteCommand(id ConnID, sender, channel, target string) InviteCommand {
	return InviteCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel, Target: target}
}

func (c InviteCommand) Keyword() string     { return "INVITE" }
func (c InviteCommand) ChannelName() string { return c.Channel }

func (c InviteCommand) Apply(m *Model) Broadcast {
	target, ok := m.UserID(c.Target)
	if !ok {
		return Error(c, ErrNoSuchUser)
	}
	if m.ChannelExists(c.Channel) && !m.IsInviteOnly(c.Channel) {
		return Error(c, ErrInviteToPublicChannel)
	}
	if !m.ChannelExists(c.Channel) {
		return Error(c, ErrNoSuchChannel)
	}
	if !m.IsOwner(c.Channel, c.ID) {
		return Error(c, ErrUserNotOwner)
	}
	m.AddUserToChannel(c.Channel, target)
	owner, _ := m.Owner(c.Channel)
	return Names(c, m.ChannelRecipients(c.Channel), owner)
}

func (c InviteCommand) String() string {
	return fmt.Sprintf(":%s INVITE %s %s", c.Nick, c.Channel, c.Target)
}

func (c InviteCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}

// KickCommand lets a channel owner remove a member. Kicking the owner
// destroys the channel.
type KickCommand struct {
	Origin
	Channel string
	Target  string
}

// NewKickCommand builds a KICK command.
func NewKickCommand(id ConnID, sender, channel, target string) KickCommand {
	return KickCommand{Origin: Origin{ID: id, Nick: sender}, Channel: channel, Target: target}
}

func (c KickCommand) Keyword() string     { return "KICK" }
func (c KickCommand) ChannelName() string { return c.Channel }

func (c KickCommand) Apply(m *Model) Broadcast {
	target, ok := m.UserID(c.Target)
	if !ok {
		return Error(c, ErrNoSuchUser)
	}
	if m.ChannelExists(c.Channel) && !m.IsOwner(c.Channel, c.ID) {
		return Error(c, ErrUserNotOwner)
	}
	if !m.ChannelExists(c.Channel) {
		return Error(c, ErrNoSuchChannel)
	}
	if !m.IsMember(c.Channel, c.ID) {
		return Error(c, ErrUserNotInChannel)
	}
	// The kicked user is told too.
	recipients := m.ChannelRecipients(c.Channel)
	m.RemoveUserFromChannel(target, c.Channel)
	return Okay(c, recipients)
}

func (c KickCommand) String() string {
	return fmt.Sprintf(":%s KICK %s %s", c.Nick, c.Channel, c.Target)
}

func (c KickCommand) withOrigin(o Origin) Command {
	c.Origin = o
	return c
}
