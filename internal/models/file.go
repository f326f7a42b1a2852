// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord is a stored attachment.
//
// OriginalName preserves the uploader's original character encoding: the
// intake path reinterprets mis-tagged Latin-1 transport bytes as UTF-8 once,
// at intake, never at read time, so multi-byte filenames round-trip intact.
//
// An inactive record (IsActive=false) is a soft-deleted file: it is excluded
// from all aggregation, listings, and quota checks. Hard deletion is a
// separate administrative operation.
type FileRecord struct {
	ID uuid.UUID `json:"id"`

	// StoredName is the name on disk/object storage; OriginalName is what
	// the uploader called it.
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`

	MediaType string `json:"media_type"`
	SizeBytes int64  `json:"size_bytes"`

	// EntityType is assigned by the classifier before the record is written;
	// it is always a member of the closed entity-type set.
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	UploaderID    string `json:"uploader_id"`
	UploaderEmail string `json:"uploader_email,omitempty"`

	IsActive     bool `json:"is_active"`
	SortPosition int  `json:"sort_position"`

	CreatedAt time.Time `json:"created_at"`
}
