// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/airlog/internal/models"
)

// GetDailyHistogram buckets events by UTC calendar day. Days with no events
// are absent from the result; the aggregation layer decides whether to
// zero-fill for charting.
func (db *DB) GetDailyHistogram(ctx context.Context, filter EventFilter) ([]models.DailyBucket, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	query := fmt.Sprintf(`SELECT
		DATE_TRUNC('day', created_at) AS day,
		COUNT(*) AS event_count,
		COUNT(DISTINCT actor_id) AS unique_actors
	FROM activity_events %s
	GROUP BY day
	ORDER BY day ASC`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily histogram: %w", err)
	}
	defer closeQuietly(rows)

	var buckets []models.DailyBucket
	for rows.Next() {
		var day time.Time
		var bucket models.DailyBucket
		if err := rows.Scan(&day, &bucket.EventCount, &bucket.UniqueActors); err != nil {
			return nil, fmt.Errorf("failed to scan daily bucket: %w", err)
		}
		bucket.Date = day.Format("2006-01-02")
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily histogram row iteration failed: %w", err)
	}

	return buckets, nil
}

// GetHourlyHistogram buckets events by hour of day (0-23) across the whole
// window, showing when in the day activity concentrates.
func (db *DB) GetHourlyHistogram(ctx context.Context, filter EventFilter) ([]models.HourlyBucket, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildEventConditions(filter)

	query := fmt.Sprintf(`SELECT
		EXTRACT(hour FROM created_at) AS hour,
		COUNT(*) AS event_count,
		COUNT(DISTINCT actor_id) AS unique_actors
	FROM activity_events %s
	GROUP BY hour
	ORDER BY hour ASC`, whereClause)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly histogram: %w", err)
	}
	defer closeQuietly(rows)

	var buckets []models.HourlyBucket
	for rows.Next() {
		var bucket models.HourlyBucket
		if err := rows.Scan(&bucket.Hour, &bucket.EventCount, &bucket.UniqueActors); err != nil {
			return nil, fmt.Errorf("failed to scan hourly bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hourly histogram row iteration failed: %w", err)
	}

	return buckets, nil
}
