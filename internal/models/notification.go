// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is a closed enum of domain occurrences that admins must see.
type NotificationType string

// Notification types.
const (
	NotificationVerificationRequest NotificationType = "verification_request"
	NotificationNewRegistration     NotificationType = "new_registration"
	NotificationSubmissionUploaded  NotificationType = "submission_uploaded"
	NotificationSystemAlert         NotificationType = "system_alert"
)

// NotificationPriority orders notifications for display.
type NotificationPriority string

// Notification priorities.
const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// Notification is a push message to one admin operator.
//
// A given domain occurrence (e.g. "user X registered") fans out to every
// currently-admin user as one Notification row per recipient, not one shared
// row. The row is durable; the live push over the WebSocket channel is
// best-effort and disconnected admins catch up via the list and unread-count
// operations.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`

	Title   string `json:"title"`
	Message string `json:"message"`

	// Optional related-actor fields for client-side display.
	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`

	Priority NotificationPriority `json:"priority"`

	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	IsArchived bool       `json:"is_archived"`

	// ActionURL is an optional dashboard deep link.
	ActionURL string `json:"action_url,omitempty"`

	// Metadata carries optional structured payload as raw JSON.
	Metadata *string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BroadcastResult reports the outcome of one hub broadcast. Delivery is
// best-effort, but the counts make the outcome explicit instead of silently
// swallowed.
type BroadcastResult struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}
