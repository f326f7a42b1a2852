// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/models"
)

// InsertNotification persists one notification row for one recipient. The
// durable row is the source of truth; the live WebSocket push is best-effort
// on top of it, so this write must not be skipped when the push fails.
func (db *DB) InsertNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}

	query := `INSERT INTO notifications (
		id, recipient_id, type, title, message, actor_id, actor_name,
		priority, is_read, read_at, is_archived, action_url, metadata, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		n.ID.String(), n.RecipientID, string(n.Type), n.Title, n.Message,
		n.ActorID, n.ActorName, string(n.Priority),
		n.IsRead, n.ReadAt, n.IsArchived, n.ActionURL, n.Metadata, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListNotifications returns one recipient's notifications, newest first.
// Archived rows are excluded unless includeArchived is set.
func (db *DB) ListNotifications(ctx context.Context, recipientID string, includeArchived bool, limit, offset int) ([]models.Notification, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause := "WHERE recipient_id = ?"
	if !includeArchived {
		whereClause += " AND NOT is_archived"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications " + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT
		id, recipient_id, type, title, message, actor_id, actor_name,
		priority, is_read, read_at, is_archived, action_url, metadata, created_at
	FROM notifications %s
	ORDER BY created_at DESC, id ASC
	LIMIT ? OFFSET ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer closeQuietly(rows)

	notifications := make([]models.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("notification row iteration failed: %w", err)
	}

	return notifications, total, nil
}

// CountUnread returns the badge count for one recipient.
func (db *DB) CountUnread(ctx context.Context, recipientID string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND NOT is_read AND NOT is_archived`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read. The recipient id is part of the
// predicate so one admin cannot mark another's notifications.
func (db *DB) MarkRead(ctx context.Context, id uuid.UUID, recipientID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = ? WHERE id = ? AND recipient_id = ?`,
		time.Now().UTC(), id.String(), recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRowAffected(result)
}

// MarkAllRead marks every unread notification for one recipient and returns
// how many rows changed.
func (db *DB) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = ? WHERE recipient_id = ? AND NOT is_read`,
		time.Now().UTC(), recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(affected), nil
}

// DeleteNotification removes one notification row for one recipient.
func (db *DB) DeleteNotification(ctx context.Context, id uuid.UUID, recipientID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND recipient_id = ?`,
		id.String(), recipientID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireRowAffected(result)
}

func scanNotification(rows *sql.Rows) (models.Notification, error) {
	var n models.Notification
	var id, notifType, priority string
	var actorID, actorName, actionURL, metadata sql.NullString
	var readAt sql.NullTime

	err := rows.Scan(
		&id, &n.RecipientID, &notifType, &n.Title, &n.Message, &actorID, &actorName,
		&priority, &n.IsRead, &readAt, &n.IsArchived, &actionURL, &metadata, &n.CreatedAt,
	)
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.ID, err = uuid.Parse(id)
	if err != nil {
		return models.Notification{}, fmt.Errorf("invalid notification id %q: %w", id, err)
	}

	n.Type = models.NotificationType(notifType)
	n.Priority = models.NotificationPriority(priority)
	n.ActorID = actorID.String
	n.ActorName = actorName.String
	n.ActionURL = actionURL.String
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if metadata.Valid {
		m := metadata.String
		n.Metadata = &m
	}

	return n, nil
}
