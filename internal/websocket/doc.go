// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package websocket implements the admin notification push channel.
//
// Connections start unauthenticated and must complete an authenticate
// handshake within a grace period or be closed. Only clients that prove an
// admin role against the user directory receive broadcasts. Broadcast
// delivery is best-effort with per-connection failure isolation: one dead
// connection never blocks delivery to its siblings, and every broadcast
// reports a typed delivered/failed result.
package websocket
