// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/database"
)

// Notification endpoints operate on the authenticated admin's own rows; the
// recipient id always comes from the token, never from the request, so one
// admin cannot touch another's inbox.

// ListNotifications serves GET /api/v1/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	identity := identityFrom(r)

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "page_size", 50)
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	notifications, total, err := h.db.ListNotifications(r.Context(),
		identity.UserID, includeArchived, pageSize, (page-1)*pageSize)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(notifications, &PaginationMeta{
		Total:    total,
		Count:    len(notifications),
		Page:     page,
		PageSize: pageSize,
		HasMore:  page*pageSize < total,
	})
}

// UnreadCount serves GET /api/v1/notifications/unread-count: the badge
// number.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	identity := identityFrom(r)

	count, err := h.db.CountUnread(r.Context(), identity.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]int{"unread": count})
}

// MarkNotificationRead serves POST /api/v1/notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	identity := identityFrom(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("invalid notification id")
		return
	}

	if err := h.db.MarkRead(r.Context(), id, identity.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("notification not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]bool{"read": true})
}

// MarkAllNotificationsRead serves POST /api/v1/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	identity := identityFrom(r)

	updated, err := h.db.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]int{"updated": updated})
}

// DeleteNotification serves DELETE /api/v1/notifications/{id}.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	identity := identityFrom(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("invalid notification id")
		return
	}

	if err := h.db.DeleteNotification(r.Context(), id, identity.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("notification not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]bool{"deleted": true})
}
