// Package proto converts between protocol lines and core values.
//
// Inbound lines have the form
//
//	[:<nick> ]KEYWORD arg... [:trailing text]
//
// and outbound lines use the same shape with the server-side sender prefix.
package proto

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vovakirdan/chanserv/internal/core"
)

var (
	ErrEmptyLine        = errors.New("empty line")
	ErrMissingPrefix    = errors.New("missing :<nick> prefix")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMissingArgument  = errors.New("missing argument")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrBadFlag          = errors.New("invite-only flag must be 0 or 1")
	// ErrBadText rejects lines carrying control characters.
	ErrBadText          = errors.New("line contains control characters")
)

// ParseLine parses a client line into a command with an empty origin. A
// leading :<nick> prefix is accepted and ignored; the hub stamps the real
// sender before applying the command.
func ParseLine(line string) (core.Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}
	if strings.ContainsFunc(line, unicode.IsControl) {
		return nil, ErrBadText
	}
	if strings.HasPrefix(line, ":") {
		_, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, ErrEmptyLine
		}
		line = rest
	}
	return parseBody(line)
}

// ParseCanonical parses a full line whose prefix names the sender.
func ParseCanonical(id core.ConnID, line string) (core.Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, ":") {
		return nil, ErrMissingPrefix
	}
	if strings.ContainsFunc(line, unicode.IsControl) {
		return nil, ErrBadText
	}
	prefix, rest, ok := strings.Cut(line[1:], " ")
	if !ok || prefix == "" {
		return nil, ErrMissingPrefix
	}
	cmd, err := parseBody(rest)
	if err != nil {
		return nil, err
	}
	return core.WithOrigin(cmd, core.Origin{ID: id, Nick: prefix}), nil
}

func parseBody(body string) (core.Command, error) {
	tokens := tokenize(body)
	if len(tokens) == 0 {
		return nil, ErrEmptyLine
	}
	keyword := strings.ToUpper(tokens[0])
	args := tokens[1:]

	switch keyword {
	case "NICK":
		if err := wantArgs(keyword, args, 1); err != nil {
			return nil, err
		}
		return core.NicknameCommand{NewNickname: args[0]}, nil
	case "CREATE":
		if err := wantArgs(keyword, args, 2); err != nil {
			return nil, err
		}
		inviteOnly, err := parseFlag(args[1])
		if err != nil {
			return nil, err
		}
		return core.CreateCommand{Channel: args[0], InviteOnly: inviteOnly}, nil
	case "JOIN":
		if err := wantArgs(keyword, args, 1); err != nil {
			return nil, err
		}
		return core.JoinCommand{Channel: args[0]}, nil
	case "MESG":
		if len(args) < 1 {
			return nil, fmt.Errorf("%s: %w", keyword, ErrMissingArgument)
		}
		return core.MessageCommand{Channel: args[0], Text: strings.Join(args[1:], " ")}, nil
	case "LEAVE":
		if err := wantArgs(keyword, args, 1); err != nil {
			return nil, err
		}
		return core.LeaveCommand{Channel: args[0]}, nil
	case "INVITE":
		if err := wantArgs(keyword, args, 2); err != nil {
			return nil, err
		}
		return core.InviteCommand{Channel: args[0], Target: args[1]}, nil
	case "KICK":
		if err := wantArgs(keyword, args, 2); err != nil {
			return nil, err
		}
		return core.KickCommand{Channel: args[0], Target: args[1]}, nil
	default:
		return nil, fmt.Errorf("%q: %w", tokens[0], ErrUnknownCommand)
	}
}

func wantArgs(keyword string, args []string, n int) error {
	switch {
	case len(args) < n:
		return fmt.Errorf("%s: %w", keyword, ErrMissingArgument)
	case len(args) > n:
		return fmt.Errorf("%s: %w", keyword, ErrTooManyArguments)
	}
	return nil
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("%q: %w", s, ErrBadFlag)
	}
}

// tokenize splits on spaces. A token starting with ':' swallows the rest of
// the line, spaces included.
func tokenize(s string) []string {
	var out []string
	for {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			return out
		}
		if s[0] == ':' {
			return append(out, s[1:])
		}
		word, rest, found := strings.Cut(s, " ")
		out = append(out, word)
		if !found {
			return out
		}
		s = rest
	}
}
