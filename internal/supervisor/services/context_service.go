// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package services

import (
	"context"
)

// ContextRunner matches components whose run loop already follows the
// suture.Service pattern: block until the context is canceled, then return
// ctx.Err(). Satisfied by *websocket.Hub and *websocket.BusSubscriber.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// ContextService wraps a ContextRunner as a named supervised service.
type ContextService struct {
	runner ContextRunner
	name   string
}

// NewWebSocketHubService wraps the WebSocket hub for the messaging layer.
func NewWebSocketHubService(hub ContextRunner) *ContextService {
	return &ContextService{runner: hub, name: "websocket-hub"}
}

// NewBusSubscriberService wraps the notification bus bridge that forwards
// published notifications into the hub.
func NewBusSubscriberService(subscriber ContextRunner) *ContextService {
	return &ContextService{runner: subscriber, name: "notification-bridge"}
}

// Serve implements suture.Service by delegating to the wrapped run loop.
func (s *ContextService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it to identify the service in
// log messages.
func (s *ContextService) String() string {
	return s.name
}
