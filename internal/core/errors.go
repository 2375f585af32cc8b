package core

// ServerError is the closed set of reasons a command can be refused.
// The string value is the code carried on the wire.
type ServerError string

const (
	ErrInvalidName           ServerError = "INVALID_NAME"
	ErrNameAlreadyInUse      ServerError = "NAME_ALREADY_IN_USE"
	ErrChannelAlreadyExists  ServerError = "CHANNEL_ALREADY_EXISTS"
	ErrNoSuchChannel         ServerError = "NO_SUCH_CHANNEL"
	ErrNoSuchUser            ServerError = "NO_SUCH_USER"
	ErrUserNotInChannel      ServerError = "USER_NOT_IN_CHANNEL"
	ErrUserNotOwner          ServerError = "USER_NOT_OWNER"
	ErrJoinPrivateChannel    ServerError = "JOIN_PRIVATE_CHANNEL"
	ErrInviteToPublicChannel ServerError = "INVITE_TO_PUBLIC_CHANNEL"
)

var serverErrorMessages = map[ServerError]string{
	ErrInvalidName:           "name must be non-empty and alphanumeric",
	ErrNameAlreadyInUse:      "nickname is already in use",
	ErrChannelAlreadyExists:  "channel already exists",
	ErrNoSuchChannel:         "no such channel",
	ErrNoSuchUser:            "no such user",
	ErrUserNotInChannel:      "user is not in channel",
	ErrUserNotOwner:          "user is not the channel owner",
	ErrJoinPrivateChannel:    "channel is invite-only",
	ErrInviteToPublicChannel: "cannot invite to a public channel",
}

// Code returns the wire code.
func (e ServerError) Code() string {
	return string(e)
}

// Message returns a human-readable description.
func (e ServerError) Message() string {
	if msg, ok := serverErrorMessages[e]; ok {
		return msg
	}
	return "unknown error"
}

func (e ServerError) Error() string {
	return e.Message()
}
