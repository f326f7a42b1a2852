// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package models defines data structures used throughout the Airlog application.
// These models represent activity events, stored files, admin notifications,
// roles, and analytics results returned by the API.
package models
