package proto

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/chanserv/internal/core"
)

// CodeBadRequest is sent when a line cannot be parsed.
const CodeBadRequest = "BAD_REQUEST"

// Format renders a broadcast as the lines each recipient receives.
func Format(b core.Broadcast) []string {
	switch b.Kind {
	case core.BroadcastConnected:
		return []string{fmt.Sprintf(":%s CONNECTED", b.Nickname)}
	case core.BroadcastOkay:
		return []string{b.Command.String()}
	case core.BroadcastError:
		return []string{fmt.Sprintf(":%s ERROR %s :%s", b.Command.Sender(), b.Err.Code(), b.Err.Message())}
	case core.BroadcastNames:
		return []string{b.Command.String(), namesLine(b)}
	case core.BroadcastDisconnected:
		return []string{fmt.Sprintf(":%s QUIT", b.Nickname)}
	default:
		return nil
	}
}

// BadRequest renders a parse failure for the offending connection.
func BadRequest(err error) string {
	return fmt.Sprintf("ERROR %s :%s", CodeBadRequest, err.Error())
}

// namesLine lists the owner first, marked with '@', then the other members.
func namesLine(b core.Broadcast) string {
	channel := ""
	if cc, ok := b.Command.(core.ChannelCommand); ok {
		channel = cc.ChannelName()
	}
	names := make([]string, 0, len(b.Recipients))
	names = append(names, "@"+b.Owner)
	for _, nick := range b.Recipients {
		if nick != b.Owner {
			names = append(names, nick)
		}
	}
	return fmt.Sprintf(":%s NAMES %s :%s", b.Owner, channel, strings.Join(names, " "))
}
