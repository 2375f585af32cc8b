// Package tcp serves the line protocol over plain TCP, one command per
// newline-terminated line.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/proto"
)

const defaultMaxLineBytes = 4096

// Server accepts TCP connections and bridges them to the hub.
type Server struct {
	hub          *core.Hub
	maxLineBytes int
	log          *zerolog.Logger
}

// NewServer creates a TCP server. maxLineBytes bounds a single inbound line.
func NewServer(hub *core.Hub, maxLineBytes int, logger *zerolog.Logger) *Server {
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{hub: hub, maxLineBytes: maxLineBytes, log: logger}
}

// ListenAndServe listens on addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp server listening")
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. It closes ln and
// waits for every connection handler before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	client := s.hub.NewClient()
	logger := s.log.With().
		Int64("conn_id", int64(client.ID)).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	logger.Debug().Msg("tcp connection accepted")

	s.hub.RegisterClient(client)
	defer s.hub.UnregisterClient(client)

	out := &lineWriter{w: bufio.NewWriter(conn)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.readLoop(gctx, conn, client, out)
	})
	g.Go(func() error {
		return s.writeLoop(gctx, client, out)
	})
	// Unblock the reader once either side stops.
	go func() {
		<-gctx.Done()
		conn.Close()
	}()

	err := g.Wait()
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled), errors.Is(err, net.ErrClosed):
		logger.Debug().Msg("tcp connection closed")
	default:
		logger.Warn().Err(err).Msg("tcp connection closed with error")
	}
}

func (s *Server) readLoop(ctx context.Context, conn net.Conn, client *core.Client, out *lineWriter) error {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(s.maxLineBytes, defaultMaxLineBytes)), s.maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		cmd, err := proto.ParseLine(line)
		if err != nil {
			if errors.Is(err, proto.ErrEmptyLine) {
				continue
			}
			if writeErr := out.writeLines(proto.BadRequest(err)); writeErr != nil {
				return writeErr
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read line: %w", err)
	}
	return io.EOF
}

func (s *Server) writeLoop(ctx context.Context, client *core.Client, out *lineWriter) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return io.EOF
			}
			if err := out.writeLines(proto.Format(event)...); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// lineWriter serializes writes from the reader (parse errors) and the
// writer (events) onto one connection.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (lw *lineWriter) writeLines(lines ...string) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	for _, line := range lines {
		if _, err := lw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return lw.w.Flush()
}
