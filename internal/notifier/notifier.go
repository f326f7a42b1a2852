// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package notifier turns domain occurrences into admin notifications. Each
// occurrence produces one durable row per admin recipient; persistence is the
// hard requirement, while the live push over the message bus is best-effort
// on top.
package notifier

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/metrics"
	"github.com/tomtom215/airlog/internal/models"
	"github.com/tomtom215/airlog/internal/websocket"
)

// Store is the persistence surface the notifier needs.
type Store interface {
	ListAdmins(ctx context.Context) ([]models.User, error)
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Service fans domain occurrences out to admin recipients.
type Service struct {
	store     Store
	publisher message.Publisher
}

// New creates a notifier. The publisher may be nil, in which case rows are
// still written but nothing is pushed live.
func New(store Store, publisher message.Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// Event describes one domain occurrence to notify admins about.
type Event struct {
	Type     models.NotificationType
	Title    string
	Message  string
	Priority models.NotificationPriority

	// Optional related-actor context.
	ActorID   string
	ActorName string

	ActionURL string
	Metadata  *string
}

// NotifyAdmins writes one notification row per current admin and then pushes
// the occurrence onto the message bus for live delivery. A row write failure
// is a hard error: the durable record is the contract, the push is not.
// Returns the number of rows created.
func (s *Service) NotifyAdmins(ctx context.Context, event Event) (int, error) {
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve admin recipients: %w", err)
	}

	priority := event.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	created := 0
	for _, admin := range admins {
		n := &models.Notification{
			RecipientID: admin.ID,
			Type:        event.Type,
			Title:       event.Title,
			Message:     event.Message,
			ActorID:     event.ActorID,
			ActorName:   event.ActorName,
			Priority:    priority,
			ActionURL:   event.ActionURL,
			Metadata:    event.Metadata,
		}
		if err := s.store.InsertNotification(ctx, n); err != nil {
			return created, fmt.Errorf("failed to persist notification for %s: %w", admin.ID, err)
		}
		created++
	}

	s.publish(ctx, event, priority)

	if created > 0 {
		metrics.NotificationsCreated.WithLabelValues(string(event.Type)).Add(float64(created))
	}

	logging.Ctx(ctx).Info().
		Str("type", string(event.Type)).
		Int("recipients", created).
		Msg("admin notification created")

	return created, nil
}

// publish pushes the occurrence onto the bus once; the hub fans it out to
// every connected admin. Failures are logged, never returned: disconnected
// admins catch up from their durable rows.
func (s *Service) publish(ctx context.Context, event Event, priority models.NotificationPriority) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(models.Notification{
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		ActorID:   event.ActorID,
		ActorName: event.ActorName,
		Priority:  priority,
		ActionURL: event.ActionURL,
		Metadata:  event.Metadata,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to marshal notification for live push")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(websocket.TopicNotifications, msg); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("type", string(event.Type)).
			Msg("live notification push failed, durable rows remain")
	}
}

// SubmissionUploaded notifies admins that a participant uploaded a contest
// submission.
func (s *Service) SubmissionUploaded(ctx context.Context, actorID, actorName, fileName string) (int, error) {
	return s.NotifyAdmins(ctx, Event{
		Type:      models.NotificationSubmissionUploaded,
		Title:     "New submission uploaded",
		Message:   fmt.Sprintf("%s uploaded %q", actorName, fileName),
		Priority:  models.PriorityNormal,
		ActorID:   actorID,
		ActorName: actorName,
	})
}

// SystemAlert notifies admins of an operational problem.
func (s *Service) SystemAlert(ctx context.Context, title, msg string) (int, error) {
	return s.NotifyAdmins(ctx, Event{
		Type:     models.NotificationSystemAlert,
		Title:    title,
		Message:  msg,
		Priority: models.PriorityHigh,
	})
}
