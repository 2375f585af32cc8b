package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/config"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
)

// NewServer builds the HTTP server: health, metrics, the read-only API and
// the websocket endpoint. audit may be nil when the audit log is disabled.
func NewServer(hub *core.Hub, audit store.AuditStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := NewAPIHandlers(hub.Session(), audit, logger)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/users", api.ListUsers)
		apiGroup.GET("/channels", api.ListChannels)
		apiGroup.GET("/channels/:name", api.GetChannel)
		apiGroup.GET("/audit", api.ListAudit)
	}

	// The websocket handler hijacks the connection itself, outside gin's writer.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.MaxLineBytes, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
