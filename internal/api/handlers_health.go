// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/airlog/internal/models"
)

// Health serves GET /health. The service reports healthy as long as it can
// answer; a down database is reported in the payload, not as a 5xx, matching
// the read-degrade behavior of the analytics surface.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	dbConnected := h.db.Ping(r.Context()) == nil

	status := "ok"
	if !dbConnected {
		status = "degraded"
	}

	rw.Success(models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		ConnectedClients:  h.hub.ClientCount(),
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}
