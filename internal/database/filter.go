// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/airlog/internal/models"
)

// EventFilter narrows activity-event queries. Zero values mean "no filter";
// Start/End are inclusive window bounds.
type EventFilter struct {
	Start time.Time
	End   time.Time

	EntityTypes []models.EntityType
	Outcomes    []models.Outcome
	Kind        models.EventKind

	// ActorSearch matches case-insensitively against actor name and email.
	ActorSearch string

	Limit  int
	Offset int
}

// buildEventConditions translates an EventFilter into a WHERE clause and its
// parameter list. The returned clause always begins with "WHERE"; with no
// active filters it degenerates to "WHERE 1=1" so callers can append freely.
func buildEventConditions(filter EventFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "1=1")

	if !filter.Start.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Start)
	}
	if !filter.End.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.End)
	}

	if len(filter.EntityTypes) > 0 {
		placeholders := make([]string, len(filter.EntityTypes))
		for i, et := range filter.EntityTypes {
			placeholders[i] = "?"
			args = append(args, string(et))
		}
		conditions = append(conditions, fmt.Sprintf("entity_type IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(filter.Outcomes) > 0 {
		placeholders := make([]string, len(filter.Outcomes))
		for i, o := range filter.Outcomes {
			placeholders[i] = "?"
			args = append(args, string(o))
		}
		conditions = append(conditions, fmt.Sprintf("outcome IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	if filter.ActorSearch != "" {
		conditions = append(conditions, "(LOWER(actor_name) LIKE ? OR LOWER(actor_email) LIKE ?)")
		pattern := "%" + strings.ToLower(filter.ActorSearch) + "%"
		args = append(args, pattern, pattern)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
