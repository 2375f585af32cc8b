package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/chanserv/internal/config"
	"github.com/vovakirdan/chanserv/internal/core"
	chanlog "github.com/vovakirdan/chanserv/internal/log"
	"github.com/vovakirdan/chanserv/internal/metrics"
	"github.com/vovakirdan/chanserv/internal/store"
	"github.com/vovakirdan/chanserv/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/chanserv/internal/transport/http"
	"github.com/vovakirdan/chanserv/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	httpServer      *stdhttp.Server
	tcpServer       *tcp.Server
	tcpAddr         string
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	recorder        *store.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		tcpAddr:         cfg.TCPAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	session := core.NewSession()
	observers := []core.Observer{metrics.NewHubObserver(session)}

	// The audit store is optional.
	var audit store.AuditStore
	if cfg.AuditDBPath != "" {
		st, err := sqlite.New(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		logger.Info().Str("db_path", cfg.AuditDBPath).Msg("audit log initialized")

		a.store = st
		a.recorder = store.NewRecorder(st, chanlog.Component(logger, "audit"), 0)
		observers = append(observers, a.recorder)
		audit = st
	}

	a.hub = core.NewHub(session, chanlog.Component(logger, "hub"), core.HubOptions{
		ClientBuffer: cfg.ClientBuffer,
		Observers:    observers,
		OnDrop:       metrics.RecordDrop,
	})

	if cfg.Addr != "" {
		a.httpServer = transporthttp.NewServer(a.hub, audit, cfg, chanlog.Component(logger, "http"))
	}
	if cfg.TCPAddr != "" {
		a.tcpServer = tcp.NewServer(a.hub, cfg.MaxLineBytes, chanlog.Component(logger, "tcp"))
	}

	return a, nil
}

// Run starts the hub and every configured listener, and blocks until
// context cancellation or the first fatal error.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	if a.recorder != nil {
		g.Go(func() error {
			a.recorder.Run(gctx)
			return nil
		})
	}

	if a.httpServer != nil {
		// Hijacked websocket connections end with gctx.
		a.httpServer.BaseContext = func(net.Listener) context.Context { return gctx }

		g.Go(func() error {
			a.log.Info().Str("addr", a.httpServer.Addr).Msg("http server listening")
			if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down http server")
			return a.httpServer.Shutdown(shutdownCtx)
		})
	}

	if a.tcpServer != nil {
		g.Go(func() error {
			return a.tcpServer.ListenAndServe(gctx, a.tcpAddr)
		})
	}

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
