// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/airlog/internal/auth"
	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/middleware"
	"github.com/tomtom215/airlog/internal/models"
)

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	authMW  *auth.Middleware
	cfg     *config.Config
}

// NewRouter creates the router.
func NewRouter(handler *Handler, authMW *auth.Middleware, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		authMW:  authMW,
		cfg:     cfg,
	}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics stay outside auth so probes and scrapers work
	// without credentials.
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// The WebSocket channel authenticates via its own handshake.
	r.Get("/ws", router.handler.WebSocketHandler)

	// Login gets the strictest rate limit to slow brute forcing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(5, 5*time.Minute))
		r.Post("/login", router.handler.Login)
	})

	// Authenticated data endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authMW.RequireAuth)

		r.Get("/analytics/overview", router.handler.AnalyticsOverview)
		r.Get("/analytics/users", router.handler.AnalyticsUsers)
		r.Get("/analytics/events", router.handler.AnalyticsEvents)

		r.Get("/files", router.handler.ListFiles)
		r.Post("/files", router.handler.UploadFile)
		r.Post("/files/{id}/downloads", router.handler.RecordDownload)
		r.Patch("/files/{id}", router.handler.UpdateFile)

		// Notification rows belong to admins only.
		r.Route("/notifications", func(r chi.Router) {
			r.Use(router.authMW.RequireRole(models.RoleAdmin))

			r.Get("/", router.handler.ListNotifications)
			r.Get("/unread-count", router.handler.UnreadCount)
			r.Post("/read-all", router.handler.MarkAllNotificationsRead)
			r.Post("/{id}/read", router.handler.MarkNotificationRead)
			r.Delete("/{id}", router.handler.DeleteNotification)
		})
	})

	return r
}

func (router *Router) corsOrigins() []string {
	origins := router.cfg.Security.CORSOriginList()
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (router *Router) rateLimit() func(http.Handler) http.Handler {
	requests := router.cfg.Security.RateLimitReqs
	if requests <= 0 {
		requests = 300
	}
	window := router.cfg.Security.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(requests, window)
}
