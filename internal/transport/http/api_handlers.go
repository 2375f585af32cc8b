package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
)

const maxAuditLimit = 1000

// APIHandlers serves read-only views of the chat state and the audit log.
type APIHandlers struct {
	session *core.Session
	audit   store.AuditStore
	log     *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. audit may be nil.
func NewAPIHandlers(session *core.Session, audit store.AuditStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		session: session,
		audit:   audit,
		log:     logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse represents a connected user.
type UserResponse struct {
	ID       int64    `json:"id"`
	Nickname string   `json:"nickname"`
	Channels []string `json:"channels"`
}

// ChannelResponse represents a channel.
type ChannelResponse struct {
	Name       string   `json:"name"`
	Owner      string   `json:"owner"`
	InviteOnly bool     `json:"invite_only"`
	Members    []string `json:"members"`
}

// AuditEntryResponse represents one audit log entry.
type AuditEntryResponse struct {
	ID         string   `json:"id"`
	ConnID     int64    `json:"conn_id"`
	SessionID  string   `json:"session_id"`
	Nickname   string   `json:"nickname"`
	Kind       string   `json:"kind"`
	Command    string   `json:"command,omitempty"`
	ErrorCode  string   `json:"error_code,omitempty"`
	Recipients []string `json:"recipients"`
	CreatedAt  string   `json:"created_at"`
}

// ListUsers returns every registered user.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	var response []UserResponse
	h.session.View(func(m *core.Model) {
		nicknames := m.RegisteredUsers()
		response = make([]UserResponse, 0, len(nicknames))
		for _, nick := range nicknames {
			id, _ := m.UserID(nick)
			response = append(response, UserResponse{
				ID:       int64(id),
				Nickname: nick,
				Channels: m.UserChannels(id),
			})
		}
	})
	c.JSON(http.StatusOK, response)
}

// ListChannels returns every existing channel.
// GET /api/channels
func (h *APIHandlers) ListChannels(c *gin.Context) {
	var response []ChannelResponse
	h.session.View(func(m *core.Model) {
		names := m.Channels()
		response = make([]ChannelResponse, 0, len(names))
		for _, name := range names {
			if info, ok := m.Channel(name); ok {
				response = append(response, channelResponse(info))
			}
		}
	})
	c.JSON(http.StatusOK, response)
}

// GetChannel returns one channel.
// GET /api/channels/:name
func (h *APIHandlers) GetChannel(c *gin.Context) {
	name := c.Param("name")

	var (
		info core.ChannelInfo
		ok   bool
	)
	h.session.View(func(m *core.Model) {
		info, ok = m.Channel(name)
	})
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrNoSuchChannel.Message()})
		return
	}
	c.JSON(http.StatusOK, channelResponse(info))
}

// ListAudit returns recent audit entries, newest first.
// GET /api/audit?limit=N&kind=K&nickname=N
func (h *APIHandlers) ListAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "audit log disabled"})
		return
	}

	filter := store.ListFilter{
		Kind:     c.Query("kind"),
		Nickname: c.Query("nickname"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxAuditLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.audit.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list audit entries")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		recipients := e.Recipients
		if recipients == nil {
			recipients = []string{}
		}
		response = append(response, AuditEntryResponse{
			ID:         e.ID,
			ConnID:     e.ConnID,
			SessionID:  e.SessionID,
			Nickname:   e.Nickname,
			Kind:       e.Kind,
			Command:    e.Command,
			ErrorCode:  e.ErrorCode,
			Recipients: recipients,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	h.log.Debug().Int("entry_count", len(response)).Msg("audit entries listed")
	c.JSON(http.StatusOK, response)
}

func channelResponse(info core.ChannelInfo) ChannelResponse {
	return ChannelResponse{
		Name:       info.Name,
		Owner:      info.Owner,
		InviteOnly: info.InviteOnly,
		Members:    info.Members,
	}
}
