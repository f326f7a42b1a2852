// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/metrics"
	"github.com/tomtom215/airlog/internal/models"
)

const (
	defaultWriteWait = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 4 * 1024

	// Inbound frames are control traffic only (handshake, pings); anything
	// chattier than this is misbehaving.
	inboundRatePerSec = 10
	inboundBurst      = 20
)

// clientIDCounter generates unique, monotonically increasing client IDs used
// for deterministic broadcast ordering.
var clientIDCounter atomic.Uint64

// RoleChecker verifies a user's current role against the directory.
// Verification happens during the handshake, so a user's claimed role never
// grants access by itself.
type RoleChecker interface {
	GetUserRole(ctx context.Context, userID string) (models.Role, error)
}

// authFrame is the expected first inbound frame on a new connection.
type authFrame struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserRole string `json:"userRole"`
}

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	roles   RoleChecker
	limiter *rate.Limiter

	// handshakeGrace bounds how long the connection may stay unauthenticated.
	handshakeGrace time.Duration

	// writeWait bounds a single outbound write so one slow connection cannot
	// stall its own write pump indefinitely.
	writeWait time.Duration

	authenticated atomic.Bool
	userID        string
}

// NewClient wraps an upgraded connection. The client does not receive
// broadcasts until Start is called and the handshake completes.
func NewClient(hub *Hub, conn *websocket.Conn, roles RoleChecker, handshakeGrace, writeTimeout time.Duration) *Client {
	if handshakeGrace <= 0 {
		handshakeGrace = 10 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteWait
	}
	return &Client{
		id:             clientIDCounter.Add(1),
		hub:            hub,
		conn:           conn,
		send:           make(chan Message, 256),
		roles:          roles,
		limiter:        rate.NewLimiter(rate.Limit(inboundRatePerSec), inboundBurst),
		handshakeGrace: handshakeGrace,
		writeWait:      writeTimeout,
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Authenticated reports whether the handshake has completed successfully.
func (c *Client) Authenticated() bool {
	return c.authenticated.Load()
}

// UserID returns the authenticated user id, empty before the handshake.
func (c *Client) UserID() string {
	if !c.Authenticated() {
		return ""
	}
	return c.userID
}

// Start registers the client with the hub and begins the read/write pumps.
// A grace timer closes the connection if the handshake does not complete in
// time.
func (c *Client) Start() {
	c.hub.register(c)

	graceTimer := time.AfterFunc(c.handshakeGrace, func() {
		if !c.Authenticated() {
			logging.Warn().
				Uint64("client_id", c.id).
				Dur("grace", c.handshakeGrace).
				Msg("websocket handshake grace expired, closing connection")
			_ = c.conn.Close()
		}
	})

	go c.writePump()
	go c.readPump(graceTimer)
}

// readPump consumes inbound frames. The first frame must be a valid
// authenticate message; after that only pings are expected.
//
// readPump never writes to the connection: unregister closes the send
// channel, and writePump drains any queued frames before closing the
// connection. gorilla allows only one concurrent writer.
func (c *Client) readPump(graceTimer *time.Timer) {
	defer func() {
		graceTimer.Stop()
		c.hub.unregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame authFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		if !c.limiter.Allow() {
			logging.Warn().Uint64("client_id", c.id).Msg("websocket client exceeded inbound rate, closing")
			return
		}

		switch frame.Type {
		case MessageTypeAuthenticate:
			if !c.handleAuthenticate(frame) {
				return
			}
		case MessageTypePing:
			select {
			case c.send <- Message{Type: MessageTypePong}:
			default:
			}
		default:
			if !c.Authenticated() {
				// Anything except authenticate before the handshake ends
				// the connection.
				c.sendError("authentication required")
				return
			}
		}
	}
}

// handleAuthenticate validates the handshake frame. The claimed role is
// checked against the directory: both must say admin. Returns false when the
// connection must close.
func (c *Client) handleAuthenticate(frame authFrame) bool {
	if c.Authenticated() {
		// Repeated authenticate frames are harmless; ack again.
		c.sendAck()
		return true
	}

	if frame.UserID == "" || models.Role(frame.UserRole) != models.RoleAdmin {
		logging.Warn().
			Uint64("client_id", c.id).
			Str("claimed_role", frame.UserRole).
			Msg("websocket handshake rejected: not an admin")
		c.sendError("admin role required")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	role, err := c.roles.GetUserRole(ctx, frame.UserID)
	if err != nil || role != models.RoleAdmin {
		logging.Warn().
			Uint64("client_id", c.id).
			Str("user_id", frame.UserID).
			Msg("websocket handshake rejected: directory role check failed")
		c.sendError("admin role required")
		return false
	}

	c.userID = frame.UserID
	c.authenticated.Store(true)
	c.sendAck()
	metrics.AuthenticatedClients.Set(float64(c.hub.AuthenticatedCount()))

	logging.Info().
		Uint64("client_id", c.id).
		Str("user_id", frame.UserID).
		Msg("websocket client authenticated")
	return true
}

func (c *Client) sendAck() {
	select {
	case c.send <- Message{Type: MessageTypeAuthenticated}:
	default:
	}
}

// sendError queues an error frame for the write pump; writePump owns the
// connection's write side. The caller returns from readPump right after,
// which closes the send channel, so the frame is flushed before the close
// handshake.
func (c *Client) sendError(reason string) {
	select {
	case c.send <- Message{Type: MessageTypeError, Data: reason}:
	default:
	}
}

// writePump is the connection's only writer: it pushes queued messages,
// keeps the connection alive with pings, and closes the connection once the
// send channel is closed and drained.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
