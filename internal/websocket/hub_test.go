// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/airlog/internal/models"
)

// fakeClient builds a registry entry without a real connection; broadcasts
// only touch the send channel.
func fakeClient(hub *Hub, authenticated bool, buffer int) *Client {
	c := &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		send: make(chan Message, buffer),
	}
	c.authenticated.Store(authenticated)
	hub.register(c)
	return c
}

func TestBroadcastOnlyReachesAuthenticatedClients(t *testing.T) {
	hub := NewHub()
	authed := fakeClient(hub, true, 4)
	pending := fakeClient(hub, false, 4)

	result := hub.BroadcastNotification(&models.Notification{Title: "hello"})

	if result.Delivered != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want delivered=1 failed=0", result)
	}
	if len(authed.send) != 1 {
		t.Errorf("authenticated client queued %d messages, want 1", len(authed.send))
	}
	if len(pending.send) != 0 {
		t.Errorf("unauthenticated client queued %d messages, want 0", len(pending.send))
	}
}

func TestBroadcastToEmptyHub(t *testing.T) {
	hub := NewHub()

	result := hub.BroadcastNotification(&models.Notification{Title: "nobody home"})

	if result.Delivered != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want zeros", result)
	}
}

func TestBroadcastEvictsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := fakeClient(hub, true, 1)
	healthy := fakeClient(hub, true, 4)

	// Fill the slow client's buffer so the next send fails.
	slow.send <- Message{Type: MessageTypePing}

	result := hub.BroadcastNotification(&models.Notification{Title: "x"})

	if result.Delivered != 1 {
		t.Errorf("delivered = %d, want 1 (healthy client)", result.Delivered)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1 (slow client)", result.Failed)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("client count = %d, want 1 after eviction", hub.ClientCount())
	}
	if len(healthy.send) != 1 {
		t.Error("failure on one client must not block delivery to siblings")
	}

	// Evicted client's channel is closed.
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("expected slow client channel to be closed")
	}
}

func TestBroadcastRepeatedResultsAreConsistent(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 3; i++ {
		fakeClient(hub, true, 16)
	}

	for i := 0; i < 5; i++ {
		result := hub.BroadcastJSON(MessageTypeNotification, map[string]string{"n": "x"})
		if result.Delivered != 3 || result.Failed != 0 {
			t.Fatalf("broadcast %d: result = %+v, want delivered=3", i, result)
		}
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := fakeClient(hub, true, 4)

	hub.unregister(c)
	hub.unregister(c) // must not panic on double close

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", hub.ClientCount())
	}
}

func TestAuthenticatedCount(t *testing.T) {
	hub := NewHub()
	fakeClient(hub, true, 4)
	fakeClient(hub, true, 4)
	fakeClient(hub, false, 4)

	if got := hub.AuthenticatedCount(); got != 2 {
		t.Errorf("AuthenticatedCount() = %d, want 2", got)
	}
	if got := hub.ClientCount(); got != 3 {
		t.Errorf("ClientCount() = %d, want 3", got)
	}
}

func TestRunWithContextClosesClients(t *testing.T) {
	hub := NewHub()
	c := fakeClient(hub, true, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- hub.RunWithContext(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after shutdown, want 0", hub.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("expected client channel to be closed on shutdown")
	}
}
