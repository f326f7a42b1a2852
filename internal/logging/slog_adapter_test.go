// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestSlogLevelsMapToZerolog(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			buf := capture(t, Config{Level: "debug", Format: "json"})

			NewSlogLogger().Log(context.Background(), tt.level, "supervisor event")

			entry := lastEntry(t, buf)
			if entry["level"] != tt.want {
				t.Errorf("level = %v, want %s", entry["level"], tt.want)
			}
			if entry["message"] != "supervisor event" {
				t.Errorf("message = %v", entry["message"])
			}
		})
	}
}

func TestSlogAttributesBecomeFields(t *testing.T) {
	buf := capture(t, Config{Level: "info", Format: "json"})

	NewSlogLogger().Info("service started",
		"service", "websocket-hub",
		"restarts", 2,
		"healthy", true,
	)

	entry := lastEntry(t, buf)
	if entry["service"] != "websocket-hub" {
		t.Errorf("service = %v, want websocket-hub", entry["service"])
	}
	if entry["restarts"] != float64(2) {
		t.Errorf("restarts = %v, want 2", entry["restarts"])
	}
	if entry["healthy"] != true {
		t.Errorf("healthy = %v, want true", entry["healthy"])
	}
}

func TestSlogWithAttrsPersistAcrossCalls(t *testing.T) {
	buf := capture(t, Config{Level: "info", Format: "json"})

	logger := NewSlogLogger().With("supervisor", "airlog")
	logger.Info("service restarted", "service", "notification-bridge")

	entry := lastEntry(t, buf)
	if entry["supervisor"] != "airlog" {
		t.Errorf("supervisor = %v, want airlog", entry["supervisor"])
	}
	if entry["service"] != "notification-bridge" {
		t.Errorf("service = %v, want notification-bridge", entry["service"])
	}
}

func TestSlogGroupsFlattenToDottedKeys(t *testing.T) {
	buf := capture(t, Config{Level: "info", Format: "json"})

	NewSlogLogger().WithGroup("service").Info("backoff", "name", "http-server")

	entry := lastEntry(t, buf)
	if entry["service.name"] != "http-server" {
		t.Errorf("service.name = %v, want http-server", entry["service.name"])
	}
}

func TestSlogEnabledFollowsGlobalLevel(t *testing.T) {
	capture(t, Config{Level: "warn", Format: "json"})

	logger := NewSlogLogger()
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled despite warn global level")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn global level")
	}
}
