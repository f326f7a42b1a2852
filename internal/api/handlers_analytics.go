// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"net/http"

	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/models"
)

// AnalyticsOverview serves GET /api/v1/analytics/overview. The report always
// succeeds: store failures surface as a zero-valued report, never a 5xx.
func (h *Handler) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	timeframe, ok := parseTimeframe(rw, r)
	if !ok {
		return
	}

	rw.Success(h.analytics.GetOverview(r.Context(), timeframe))
}

// AnalyticsUsers serves GET /api/v1/analytics/users with optional search and
// pagination.
func (h *Handler) AnalyticsUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	timeframe, ok := parseTimeframe(rw, r)
	if !ok {
		return
	}

	rollup := h.analytics.GetUserRollup(r.Context(), timeframe,
		r.URL.Query().Get("search"),
		queryInt(r, "page", 1),
		queryInt(r, "page_size", 0),
	)

	rw.SuccessWithPagination(rollup, &PaginationMeta{
		Total:    rollup.TotalCount,
		Count:    len(rollup.Rows),
		Page:     rollup.Page,
		PageSize: rollup.PageSize,
		HasMore:  rollup.Page*rollup.PageSize < rollup.TotalCount,
	})
}

// AnalyticsEvents serves GET /api/v1/analytics/events: the raw activity log,
// newest first, with entity-type and outcome filters.
func (h *Handler) AnalyticsEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	timeframe, ok := parseTimeframe(rw, r)
	if !ok {
		return
	}

	var filter database.EventFilter
	if raw := r.URL.Query().Get("entity_type"); raw != "" {
		entityType := models.EntityType(raw)
		if !models.IsValidEntityType(entityType) {
			rw.BadRequest("invalid entity_type filter")
			return
		}
		filter.EntityTypes = []models.EntityType{entityType}
	}
	if raw := r.URL.Query().Get("outcome"); raw != "" {
		outcome := models.Outcome(raw)
		if !models.IsValidOutcome(outcome) {
			rw.BadRequest("invalid outcome filter")
			return
		}
		filter.Outcomes = []models.Outcome{outcome}
	}
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind := models.EventKind(raw)
		if kind != models.EventDownload && kind != models.EventUpload {
			rw.BadRequest("invalid kind filter")
			return
		}
		filter.Kind = kind
	}
	filter.ActorSearch = r.URL.Query().Get("search")

	log := h.analytics.GetEventLog(r.Context(), timeframe, filter,
		queryInt(r, "page", 1),
		queryInt(r, "page_size", 0),
	)

	rw.SuccessWithPagination(log, &PaginationMeta{
		Total:    log.TotalCount,
		Count:    len(log.Rows),
		Page:     log.Page,
		PageSize: log.PageSize,
		HasMore:  log.Page*log.PageSize < log.TotalCount,
	})
}
