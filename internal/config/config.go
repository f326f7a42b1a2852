// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package config loads and validates application configuration via Koanf v2
// with layered sources: built-in defaults, then an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Security      SecurityConfig      `koanf:"security"`
	Logging       LoggingConfig       `koanf:"logging"`
	Analytics     AnalyticsConfig     `koanf:"analytics"`
	Notifications NotificationsConfig `koanf:"notifications"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. An empty path opens an in-memory
	// database (used by tests).
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// AuthMode selects REST-surface authentication: "jwt" or "none".
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs session tokens. Minimum 32 characters when AuthMode
	// is "jwt".
	JWTSecret string `koanf:"jwt_secret"`

	// AdminUsername/AdminPassword are the bootstrap credentials for the
	// login endpoint. The password is bcrypt-hashed at startup.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	SessionTimeout time.Duration `koanf:"session_timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins is a comma-separated allow list ("*" allows any origin).
	CORSOrigins string `koanf:"cors_origins"`
}

// CORSOriginList splits the configured origins.
func (s SecurityConfig) CORSOriginList() []string {
	if s.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(s.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AnalyticsConfig tunes the aggregation layer.
type AnalyticsConfig struct {
	// CacheTTL bounds staleness of cached dashboard reports.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// DefaultPageSize/MaxPageSize bound paginated reports.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// NotificationsConfig tunes the push channel.
type NotificationsConfig struct {
	// HandshakeGrace is how long a new connection may remain unauthenticated
	// before it is closed.
	HandshakeGrace time.Duration `koanf:"handshake_grace"`

	// WriteTimeout bounds a single fan-out write so one slow connection
	// cannot stall its siblings.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// BroadcastBuffer is the hub's pending-broadcast queue depth.
	BroadcastBuffer int `koanf:"broadcast_buffer"`
}

// Validate checks invariants that cannot be expressed as simple defaults.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters when auth_mode=jwt")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode=jwt")
		}
	case "none":
		// Development mode; no further checks.
	default:
		return fmt.Errorf("security.auth_mode must be jwt or none, got %q", c.Security.AuthMode)
	}

	if c.Analytics.DefaultPageSize < 1 || c.Analytics.DefaultPageSize > c.Analytics.MaxPageSize {
		return fmt.Errorf("analytics.default_page_size must be in 1-%d", c.Analytics.MaxPageSize)
	}

	if c.Notifications.HandshakeGrace <= 0 {
		return fmt.Errorf("notifications.handshake_grace must be positive")
	}

	return nil
}
