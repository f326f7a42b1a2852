// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/metrics"
	"github.com/tomtom215/airlog/internal/models"
)

// Message types for WebSocket communication.
const (
	MessageTypeAuthenticate  = "authenticate"
	MessageTypeAuthenticated = "authenticated"
	MessageTypeError         = "error"
	MessageTypeNotification  = "notification"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message is one outbound WebSocket frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub maintains the set of connected clients and fans notifications out to
// the authenticated ones. The registry is guarded by a mutex and instances
// are created per server, so tests and multiple servers never share state.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint64]*Client),
	}
}

// register adds a client to the registry. The client is not yet eligible for
// broadcasts until its handshake completes.
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectedClients.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

// unregister removes a client and closes its send channel. Safe to call more
// than once for the same client.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectedClients.Set(float64(total))
	metrics.AuthenticatedClients.Set(float64(h.AuthenticatedCount()))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// BroadcastNotification fans a notification out to every authenticated admin
// client and reports how many deliveries were queued versus failed.
//
// DETERMINISM: clients are visited in connection order (ascending id) so
// repeated broadcasts behave identically. A client whose send buffer is full
// counts as failed and is evicted; delivery to the remaining clients
// continues regardless.
func (h *Hub) BroadcastNotification(notification *models.Notification) models.BroadcastResult {
	return h.broadcast(Message{
		Type: MessageTypeNotification,
		Data: notification,
	})
}

// BroadcastJSON sends an arbitrary typed message to authenticated clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) models.BroadcastResult {
	return h.broadcast(Message{Type: messageType, Data: data})
}

func (h *Hub) broadcast(message Message) models.BroadcastResult {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		if client.Authenticated() {
			targets = append(targets, client)
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].id < targets[j].id
	})

	var result models.BroadcastResult
	var toRemove []*Client

	for _, client := range targets {
		select {
		case client.send <- message:
			result.Delivered++
		default:
			// Send buffer full: the client is too slow to keep. Evict it
			// rather than block the rest of the fan-out.
			result.Failed++
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		delete(h.clients, client.id)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ConnectedClients.Set(float64(total))
	metrics.RecordBroadcast(result.Delivered, result.Failed)

	if result.Failed > 0 {
		logging.Warn().
			Int("delivered", result.Delivered).
			Int("failed", result.Failed).
			Str("message_type", message.Type).
			Msg("broadcast evicted slow clients")
	}

	return result
}

// ClientCount returns the number of connected clients, authenticated or not.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AuthenticatedCount returns the number of clients eligible for broadcasts.
func (h *Hub) AuthenticatedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, client := range h.clients {
		if client.Authenticated() {
			count++
		}
	}
	return count
}

// RunWithContext blocks until the context is canceled, then closes every
// connected client. Designed for suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	ids := make([]uint64, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		close(h.clients[id].send)
		delete(h.clients, id)
	}
	closed := len(ids)
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", closed).
		Msg("websocket hub stopped")

	return ctx.Err()
}
