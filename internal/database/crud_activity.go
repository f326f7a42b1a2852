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

// InsertActivityEvent appends one event to the activity log. The event is
// immutable after this call; there is deliberately no update or delete
// counterpart. Write failures surface to the caller so the interaction can be
// rejected rather than silently unrecorded.
func (db *DB) InsertActivityEvent(ctx context.Context, event *models.ActivityEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if !models.IsValidEntityType(event.EntityType) {
		return fmt.Errorf("invalid entity type %q", event.EntityType)
	}
	if !models.IsValidOutcome(event.Outcome) {
		return fmt.Errorf("invalid outcome %q", event.Outcome)
	}

	query := `INSERT INTO activity_events (
		id, kind, actor_id, actor_name, actor_email, actor_role,
		file_id, file_name, entity_type, entity_id,
		size_bytes, duration_ms, outcome, origin_page, ip_address, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		event.ID.String(), string(event.Kind),
		event.ActorID, event.ActorName, event.ActorEmail, string(event.ActorRole),
		event.FileID.String(), event.FileName, string(event.EntityType), event.EntityID,
		event.SizeBytes, event.DurationMs, string(event.Outcome),
		event.OriginPage, event.IPAddress, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}

	return nil
}

// GetEventLog returns one page of raw events matching the filter, newest
// first, along with the total match count for pagination.
func (db *DB) GetEventLog(ctx context.Context, filter EventFilter) ([]models.ActivityEvent, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM activity_events " + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Secondary ordering by id makes pagination stable when many events
	// share a timestamp.
	query := fmt.Sprintf(`SELECT
		id, kind, actor_id, actor_name, actor_email, actor_role,
		file_id, file_name, entity_type, entity_id,
		size_bytes, duration_ms, outcome, origin_page, ip_address, created_at
	FROM activity_events %s
	ORDER BY created_at DESC, id ASC
	LIMIT ? OFFSET ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeQuietly(rows)

	events := make([]models.ActivityEvent, 0, limit)
	for rows.Next() {
		event, err := scanActivityEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("event row iteration failed: %w", err)
	}

	return events, total, nil
}

func scanActivityEvent(rows *sql.Rows) (models.ActivityEvent, error) {
	var event models.ActivityEvent
	var id, fileID string
	var kind, role, entityType, outcome string
	var actorEmail, originPage, ipAddress sql.NullString

	err := rows.Scan(
		&id, &kind, &event.ActorID, &event.ActorName, &actorEmail, &role,
		&fileID, &event.FileName, &entityType, &event.EntityID,
		&event.SizeBytes, &event.DurationMs, &outcome, &originPage, &ipAddress,
		&event.CreatedAt,
	)
	if err != nil {
		return models.ActivityEvent{}, fmt.Errorf("failed to scan activity event: %w", err)
	}

	event.ID, err = uuid.Parse(id)
	if err != nil {
		return models.ActivityEvent{}, fmt.Errorf("invalid event id %q: %w", id, err)
	}
	event.FileID, err = uuid.Parse(fileID)
	if err != nil {
		return models.ActivityEvent{}, fmt.Errorf("invalid file id %q: %w", fileID, err)
	}

	event.Kind = models.EventKind(kind)
	event.ActorRole = models.Role(role)
	event.EntityType = models.EntityType(entityType)
	event.Outcome = models.Outcome(outcome)
	event.ActorEmail = actorEmail.String
	event.OriginPage = originPage.String
	event.IPAddress = ipAddress.String

	return event, nil
}
