// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package websocket

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/models"
)

// TopicNotifications is the bus topic carrying notification fan-out requests
// from the notifier to the hub.
const TopicNotifications = "notifications.broadcast"

// BusSubscriber bridges the in-process message bus to the hub: the notifier
// publishes durable notifications onto the bus, and this subscriber pushes
// them to connected admins. Decoupling the two means a slow or empty hub
// never blocks the write path.
type BusSubscriber struct {
	subscriber message.Subscriber
	hub        *Hub
}

// NewBusSubscriber creates a bridge from the given subscriber to the hub.
func NewBusSubscriber(subscriber message.Subscriber, hub *Hub) *BusSubscriber {
	return &BusSubscriber{
		subscriber: subscriber,
		hub:        hub,
	}
}

// RunWithContext consumes the notification topic until the context is
// canceled. Malformed payloads are acked and dropped; redelivery cannot fix
// them.
func (b *BusSubscriber) RunWithContext(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, TopicNotifications)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicNotifications, err)
	}

	logging.Info().
		Str("topic", TopicNotifications).
		Msg("notification bus subscriber started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().
				Str("component", "bus-subscriber").
				Msg("notification bus subscriber stopped")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("notification subscription channel closed")
			}
			b.handleMessage(msg)
		}
	}
}

func (b *BusSubscriber) handleMessage(msg *message.Message) {
	defer msg.Ack()

	var notification models.Notification
	if err := json.Unmarshal(msg.Payload, &notification); err != nil {
		logging.Warn().Err(err).
			Str("message_uuid", msg.UUID).
			Msg("dropping malformed notification payload")
		return
	}

	result := b.hub.BroadcastNotification(&notification)

	logging.Debug().
		Str("notification_id", notification.ID.String()).
		Int("delivered", result.Delivered).
		Int("failed", result.Failed).
		Msg("notification pushed to websocket clients")
}
