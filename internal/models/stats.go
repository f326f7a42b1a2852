// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package models

import (
	"time"

	"github.com/google/uuid"
)

// Overview is the top-of-dashboard report for one timeframe.
//
// All list fields are non-nil empty slices for empty windows, and all scalar
// fields default to zero, so dashboards always render a defined "no data"
// state.
type Overview struct {
	Timeframe    string `json:"timeframe"`
	TotalEvents  int    `json:"total_events"`
	UniqueActors int    `json:"unique_actors"`
	TotalBytes   int64  `json:"total_bytes"`

	TopFiles        []TopFile       `json:"top_files"`
	DailyHistogram  []DailyBucket   `json:"daily_histogram"`
	HourlyHistogram []HourlyBucket  `json:"hourly_histogram"`
	TypeBreakdown   []TypeBreakdown `json:"type_breakdown"`
}

// TopFile is one row of the top-N-by-count ranking. Ordering is count
// descending, ties broken by total size descending, then by file id ascending
// for determinism.
type TopFile struct {
	FileID     uuid.UUID  `json:"file_id"`
	FileName   string     `json:"file_name"`
	EntityType EntityType `json:"entity_type"`
	EventCount int        `json:"event_count"`
	TotalBytes int64      `json:"total_bytes"`
}

// DailyBucket is one calendar day of the "activity over time" chart.
type DailyBucket struct {
	Date         string `json:"date"` // YYYY-MM-DD
	EventCount   int    `json:"event_count"`
	UniqueActors int    `json:"unique_actors"`
}

// HourlyBucket is one hour-of-day (0-23) of the "activity by hour" chart.
type HourlyBucket struct {
	Hour         int `json:"hour"`
	EventCount   int `json:"event_count"`
	UniqueActors int `json:"unique_actors"`
}

// TypeBreakdown is the per-entity-type share used by pie visualizations.
type TypeBreakdown struct {
	EntityType EntityType `json:"entity_type"`
	EventCount int        `json:"event_count"`
	TotalBytes int64      `json:"total_bytes"`
}

// UserRollupRow is one actor's aggregate in the per-user report.
type UserRollupRow struct {
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	ActorEmail string    `json:"actor_email,omitempty"`
	EventCount int       `json:"event_count"`
	TotalBytes int64     `json:"total_bytes"`
	LastEvent  time.Time `json:"last_event"`
}

// UserRollup is the paginated per-user report.
type UserRollup struct {
	Timeframe  string          `json:"timeframe"`
	Rows       []UserRollupRow `json:"rows"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// EventLog is the paginated raw event listing, newest first.
type EventLog struct {
	Timeframe  string          `json:"timeframe"`
	Rows       []ActivityEvent `json:"rows"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	ConnectedClients  int     `json:"connected_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}
