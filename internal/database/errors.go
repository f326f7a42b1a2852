// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"errors"
	"io"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// closeQuietly closes a resource where the error has nowhere useful to go,
// such as cleanup paths that already carry a primary error.
func closeQuietly(closer io.Closer) {
	_ = closer.Close()
}
