// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package aggregator

import (
	"fmt"
	"time"
)

// Timeframe is the closed set of reporting windows the dashboard offers.
type Timeframe string

// Supported timeframes.
const (
	TimeframeDay     Timeframe = "24h"
	TimeframeWeek    Timeframe = "7d"
	TimeframeMonth   Timeframe = "30d"
	TimeframeQuarter Timeframe = "90d"
)

// DefaultTimeframe is used when a request omits the timeframe parameter.
const DefaultTimeframe = TimeframeWeek

// ParseTimeframe validates a request parameter against the closed timeframe
// set. Empty input falls back to the default; anything else is an error, not
// a silent fallback, so dashboards cannot drift onto unintended windows.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "":
		return DefaultTimeframe, nil
	case TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeQuarter:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("invalid timeframe %q: must be one of 24h, 7d, 30d, 90d", s)
	}
}

// Lookback returns the window duration behind "now".
func (t Timeframe) Lookback() time.Duration {
	switch t {
	case TimeframeDay:
		return 24 * time.Hour
	case TimeframeMonth:
		return 30 * 24 * time.Hour
	case TimeframeQuarter:
		return 90 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Window returns the inclusive [start, end] bounds for the timeframe ending
// at now.
func (t Timeframe) Window(now time.Time) (start, end time.Time) {
	return now.Add(-t.Lookback()), now
}
