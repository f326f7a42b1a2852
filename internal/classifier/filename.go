// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package classifier

import (
	"unicode/utf8"
)

// DecodeFilename repairs filenames mangled by transports that tag UTF-8
// payload bytes as a single-byte-per-character encoding (Latin-1).
//
// Such a transport hands us a string where every rune is in U+0000..U+00FF
// and each rune's low byte is one byte of the original UTF-8 sequence. When
// that byte sequence is itself valid multi-byte UTF-8, the original name is
// reconstructed from it; otherwise the input is returned unchanged. The
// reinterpretation is applied once, at intake, never at read time.
func DecodeFilename(name string) string {
	raw := make([]byte, 0, len(name))
	multibyte := false

	for _, r := range name {
		if r > 0xFF {
			// Contains genuine non-Latin-1 code points, so the name was
			// decoded correctly upstream.
			return name
		}
		if r > 0x7F {
			multibyte = true
		}
		raw = append(raw, byte(r))
	}

	// Pure ASCII round-trips identically either way.
	if !multibyte {
		return name
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	return name
}
