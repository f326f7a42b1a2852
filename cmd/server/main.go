// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package main is the entry point for the Airlog server.
//
// Airlog is the activity backbone of a community radio program tracker: it
// records every file upload and download against the program's entities
// (projects, episodes, scripts, contest submissions, teams), serves
// time-windowed analytics for the dashboard, and pushes live notifications
// to connected admins over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env vars)
//  2. Database: DuckDB with the activity/files/notifications/users schema
//  3. Message bus: Watermill in-process channel bridging notifier and hub
//  4. WebSocket hub: live admin notification fan-out
//  5. Authentication: JWT or no-auth mode
//  6. HTTP server: REST API behind the Chi router
//  7. Supervisor tree: suture-managed lifecycle for hub, bridge, and server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables, config file (config.yaml), built-in defaults.
//
// For JWT authentication (default):
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME / ADMIN_PASSWORD: bootstrap login credentials
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests within the configured
// shutdown timeout, closes every WebSocket client, and closes the database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/airlog/internal/aggregator"
	"github.com/tomtom215/airlog/internal/api"
	"github.com/tomtom215/airlog/internal/auth"
	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/notifier"
	"github.com/tomtom215/airlog/internal/supervisor"
	"github.com/tomtom215/airlog/internal/supervisor/services"
	ws "github.com/tomtom215/airlog/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Airlog")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// In-process bus between the notifier (publisher) and the WebSocket hub
	// (subscriber). Durable notification rows never depend on this channel.
	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.Notifications.BroadcastBuffer),
	}, logging.NewWatermillAdapter())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing message bus")
		}
	}()

	hub := ws.NewHub()
	analytics := aggregator.New(db, cfg.Analytics)
	notifierSvc := notifier.New(db, bus)

	var jwtManager *auth.JWTManager
	var credentials *auth.Credentials
	if cfg.Security.AuthMode == "jwt" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		credentials, err = auth.NewCredentials(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize admin credentials")
		}
		logging.Info().Msg("JWT authentication enabled")
	} else {
		logging.Warn().Msg("Authentication is DISABLED (auth_mode=none) - use only for local development")
	}
	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode == "none")

	handler := api.NewHandler(db, analytics, notifierSvc, hub, cfg, jwtManager, credentials)
	router := api.NewRouter(handler, authMW, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree: messaging layer (hub + bus bridge) and API layer.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewBusSubscriberService(ws.NewBusSubscriber(bus, hub)))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
