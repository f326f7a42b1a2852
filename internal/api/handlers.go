// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/airlog/internal/aggregator"
	"github.com/tomtom215/airlog/internal/auth"
	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/models"
	"github.com/tomtom215/airlog/internal/notifier"
	"github.com/tomtom215/airlog/internal/websocket"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Handler holds the dependencies shared by all REST endpoints.
type Handler struct {
	db        *database.DB
	analytics *aggregator.Service
	notifier  *notifier.Service
	hub       *websocket.Hub
	cfg       *config.Config

	// jwtManager and credentials are nil when auth_mode=none.
	jwtManager  *auth.JWTManager
	credentials *auth.Credentials

	upgrader  gorilla.Upgrader
	startTime time.Time
}

// NewHandler wires the REST surface.
func NewHandler(
	db *database.DB,
	analytics *aggregator.Service,
	notifierSvc *notifier.Service,
	hub *websocket.Hub,
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	credentials *auth.Credentials,
) *Handler {
	return &Handler{
		db:          db,
		analytics:   analytics,
		notifier:    notifierSvc,
		hub:         hub,
		cfg:         cfg,
		jwtManager:  jwtManager,
		credentials: credentials,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg),
		},
		startTime: time.Now(),
	}
}

// originChecker allows the configured CORS origins on WebSocket upgrades.
// "*" or an empty list allows any origin.
func originChecker(cfg *config.Config) func(*http.Request) bool {
	origins := cfg.Security.CORSOriginList()
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// queryInt parses an integer query parameter, returning fallback when absent
// or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// identityFrom extracts the authenticated identity; handlers behind
// RequireAuth can rely on it being present.
func identityFrom(r *http.Request) auth.Identity {
	identity, _ := auth.IdentityFromContext(r.Context())
	return identity
}

// parseTimeframe resolves the timeframe query parameter, writing a 400 and
// returning false on an invalid value.
func parseTimeframe(rw *ResponseWriter, r *http.Request) (aggregator.Timeframe, bool) {
	timeframe, err := aggregator.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		rw.BadRequest(err.Error())
		return "", false
	}
	return timeframe, true
}

// WebSocketHandler upgrades the connection and hands it to the hub. The
// admin handshake, not REST auth, gates access; unauthenticated connections
// are dropped after the grace period.
func (h *Handler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	websocket.NewClient(h.hub, conn, h.db,
		h.cfg.Notifications.HandshakeGrace,
		h.cfg.Notifications.WriteTimeout).Start()
}

// Login verifies the bootstrap admin credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.jwtManager == nil || h.credentials == nil {
		rw.BadRequest("authentication is disabled")
		return
	}

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		rw.BadRequest("username and password are required")
		return
	}

	if !h.credentials.Verify(req.Username, req.Password) {
		rw.Unauthorized("invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username, req.Username, models.RoleAdmin)
	if err != nil {
		rw.InternalError("failed to issue token")
		return
	}

	rw.Success(map[string]interface{}{
		"token":      token,
		"expires_in": int(h.jwtManager.SessionTimeout().Seconds()),
	})
}
