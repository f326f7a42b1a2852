// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/models"
)

// GetOverviewScalars returns the three headline numbers for a window: total
// events, distinct actors, and total transferred bytes.
func (db *DB) GetOverviewScalars(ctx context.Context, filter EventFilter) (totalEvents, uniqueActors int, totalBytes int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	query := `SELECT
		COUNT(*),
		COUNT(DISTINCT actor_id),
		COALESCE(SUM(size_bytes), 0)
	FROM activity_events ` + whereClause

	err = db.conn.QueryRowContext(ctx, query, args...).Scan(&totalEvents, &uniqueActors, &totalBytes)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to query overview scalars: %w", err)
	}
	return totalEvents, uniqueActors, totalBytes, nil
}

// GetTopFiles returns the n most-active files in the window. Ordering is
// event count descending, total bytes descending, then file id ascending so
// repeated queries over the same data return the same ranking.
func (db *DB) GetTopFiles(ctx context.Context, filter EventFilter, n int) ([]models.TopFile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if n <= 0 {
		n = 10
	}

	whereClause, args := buildEventConditions(filter)

	// arg_max picks the most recent name and type for the file, so renamed
	// files report under their latest name.
	query := fmt.Sprintf(`SELECT
		file_id,
		arg_max(file_name, created_at) AS file_name,
		arg_max(entity_type, created_at) AS entity_type,
		COUNT(*) AS event_count,
		COALESCE(SUM(size_bytes), 0) AS total_bytes
	FROM activity_events %s
	GROUP BY file_id
	ORDER BY event_count DESC, total_bytes DESC, file_id ASC
	LIMIT ?`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, append(args, n)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top files: %w", err)
	}
	defer closeQuietly(rows)

	files := make([]models.TopFile, 0, n)
	for rows.Next() {
		var tf models.TopFile
		var fileID, entityType string
		if err := rows.Scan(&fileID, &tf.FileName, &entityType, &tf.EventCount, &tf.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan top file: %w", err)
		}
		tf.FileID, err = uuid.Parse(fileID)
		if err != nil {
			return nil, fmt.Errorf("invalid file id %q: %w", fileID, err)
		}
		tf.EntityType = models.EntityType(entityType)
		files = append(files, tf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top file row iteration failed: %w", err)
	}

	return files, nil
}

// GetTypeBreakdown returns per-entity-type event counts and byte totals for
// the window, largest share first.
func (db *DB) GetTypeBreakdown(ctx context.Context, filter EventFilter) ([]models.TypeBreakdown, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	query := fmt.Sprintf(`SELECT
		entity_type,
		COUNT(*) AS event_count,
		COALESCE(SUM(size_bytes), 0) AS total_bytes
	FROM activity_events %s
	GROUP BY entity_type
	ORDER BY event_count DESC, entity_type ASC`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query type breakdown: %w", err)
	}
	defer closeQuietly(rows)

	breakdown := make([]models.TypeBreakdown, 0, len(models.ValidEntityTypes))
	for rows.Next() {
		var tb models.TypeBreakdown
		var entityType string
		if err := rows.Scan(&entityType, &tb.EventCount, &tb.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan type breakdown: %w", err)
		}
		tb.EntityType = models.EntityType(entityType)
		breakdown = append(breakdown, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("type breakdown row iteration failed: %w", err)
	}

	return breakdown, nil
}
