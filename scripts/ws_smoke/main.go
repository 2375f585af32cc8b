package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	nick := flag.String("nick", "", "nickname to take after connecting (optional)")
	channel := flag.String("channel", "smoke", "channel to create")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(line string) error {
		if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
		return nil
	}

	// expect reads until a line containing want arrives; error lines abort.
	expect := func(want string) (string, error) {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return "", fmt.Errorf("read: %w", err)
			}
			line := string(data)
			fmt.Printf("< %s\n", line)
			if strings.Contains(line, " ERROR ") || strings.HasPrefix(line, "ERROR ") {
				return "", fmt.Errorf("server error: %s", line)
			}
			if strings.Contains(line, want) {
				return line, nil
			}
		}
	}

	if _, err := expect(" CONNECTED"); err != nil {
		return err
	}

	if *nick != "" {
		if err := send("NICK " + *nick); err != nil {
			return err
		}
	}

	if err := send(fmt.Sprintf("CREATE %s 0", *channel)); err != nil {
		return err
	}
	if _, err := expect(" CREATE " + *channel); err != nil {
		return err
	}

	if err := send(fmt.Sprintf("MESG %s :%s", *channel, *text)); err != nil {
		return err
	}
	if _, err := expect(" MESG " + *channel); err != nil {
		return err
	}

	fmt.Println("smoke test passed")
	return nil
}
