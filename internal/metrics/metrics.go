// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package metrics exposes Prometheus instrumentation for the activity log,
// analytics queries, notification fan-out, and the WebSocket channel.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Activity log metrics.
	ActivityEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlog_activity_events_total",
			Help: "Total activity events recorded, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ActivityBytesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlog_activity_bytes_total",
			Help: "Total bytes transferred across recorded events, by kind",
		},
		[]string{"kind"},
	)

	// Analytics metrics.
	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airlog_analytics_query_duration_seconds",
			Help:    "Duration of analytics store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	AnalyticsDegradedReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airlog_analytics_degraded_reads_total",
			Help: "Analytics reads that returned a zero-value report due to store failure",
		},
	)

	// Notification metrics.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlog_notifications_created_total",
			Help: "Durable notification rows created, by type",
		},
		[]string{"type"},
	)

	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airlog_broadcast_deliveries_total",
			Help: "WebSocket broadcast deliveries, by result",
		},
		[]string{"result"}, // "delivered" or "failed"
	)

	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airlog_websocket_clients",
			Help: "Currently connected WebSocket clients",
		},
	)

	AuthenticatedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airlog_websocket_authenticated_clients",
			Help: "WebSocket clients that completed the admin handshake",
		},
	)

	// HTTP metrics.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airlog_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airlog_api_active_requests",
			Help: "In-flight API requests",
		},
	)
)

// RecordActivityEvent increments the event counters after a successful write.
func RecordActivityEvent(kind, outcome string, sizeBytes int64) {
	ActivityEventsRecorded.WithLabelValues(kind, outcome).Inc()
	if sizeBytes > 0 {
		ActivityBytesRecorded.WithLabelValues(kind).Add(float64(sizeBytes))
	}
}

// RecordAnalyticsQuery observes one store query.
func RecordAnalyticsQuery(operation string, duration time.Duration) {
	AnalyticsQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBroadcast records one fan-out result.
func RecordBroadcast(delivered, failed int) {
	if delivered > 0 {
		BroadcastDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	}
	if failed > 0 {
		BroadcastDeliveries.WithLabelValues("failed").Add(float64(failed))
	}
}

// RecordAPIRequest observes one completed HTTP request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
