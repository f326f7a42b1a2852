// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/airlog/internal/models"
)

// GetUserRollup returns one page of per-actor aggregates matching the filter,
// most active first, with the total distinct-actor count for pagination. The
// filter's ActorSearch narrows by name or email before grouping.
func (db *DB) GetUserRollup(ctx context.Context, filter EventFilter) ([]models.UserRollupRow, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	var total int
	countQuery := "SELECT COUNT(DISTINCT actor_id) FROM activity_events " + whereClause
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rollup actors: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// arg_max reports each actor under their most recent denormalized name
	// and email. Ties on event count break by actor id for stable pages.
	query := fmt.Sprintf(`SELECT
		actor_id,
		arg_max(actor_name, created_at) AS actor_name,
		COALESCE(arg_max(actor_email, created_at), '') AS actor_email,
		COUNT(*) AS event_count,
		COALESCE(SUM(size_bytes), 0) AS total_bytes,
		MAX(created_at) AS last_event
	FROM activity_events %s
	GROUP BY actor_id
	ORDER BY event_count DESC, total_bytes DESC, actor_id ASC
	LIMIT ? OFFSET ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query user rollup: %w", err)
	}
	defer closeQuietly(rows)

	result := make([]models.UserRollupRow, 0, limit)
	for rows.Next() {
		var row models.UserRollupRow
		if err := rows.Scan(&row.ActorID, &row.ActorName, &row.ActorEmail,
			&row.EventCount, &row.TotalBytes, &row.LastEvent); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rollup row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rollup row iteration failed: %w", err)
	}

	return result, total, nil
}
