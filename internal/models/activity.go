// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is the closed-set logical category a file or event belongs to.
type EntityType string

// Entity type constants recognized by the classifier and the analytics layer.
const (
	EntityProject    EntityType = "project"
	EntityEpisode    EntityType = "episode"
	EntityScript     EntityType = "script"
	EntitySubmission EntityType = "submission"
	EntityTeam       EntityType = "team"
)

// ValidEntityTypes contains all entity types for validation.
var ValidEntityTypes = []EntityType{
	EntityProject, EntityEpisode, EntityScript, EntitySubmission, EntityTeam,
}

// IsValidEntityType checks whether t is a member of the closed entity-type set.
func IsValidEntityType(t EntityType) bool {
	for _, v := range ValidEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// EventKind distinguishes the two transfer directions recorded in the log.
type EventKind string

// Event kinds.
const (
	EventDownload EventKind = "download"
	EventUpload   EventKind = "upload"
)

// Outcome describes how a transfer ended.
type Outcome string

// Transfer outcomes.
const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeFailed      Outcome = "failed"
	OutcomeInterrupted Outcome = "interrupted"
)

// ValidOutcomes contains all transfer outcomes for validation.
var ValidOutcomes = []Outcome{OutcomeCompleted, OutcomeFailed, OutcomeInterrupted}

// IsValidOutcome checks whether o is a member of the closed outcome set.
func IsValidOutcome(o Outcome) bool {
	for _, v := range ValidOutcomes {
		if v == o {
			return true
		}
	}
	return false
}

// ActivityEvent is one downloaded or uploaded file interaction.
//
// Actor name, email, and role are denormalized at write time so historical
// reports stay accurate even if the actor is later renamed or deleted.
// Events are immutable once written: aggregation never mutates history, and
// deletion happens only through an explicit retention operation outside the
// core.
type ActivityEvent struct {
	ID uuid.UUID `json:"id"`

	// Kind is the transfer direction (download or upload).
	Kind EventKind `json:"kind"`

	// Actor identification, denormalized at write time.
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	ActorEmail string `json:"actor_email,omitempty"`
	ActorRole  Role   `json:"actor_role"`

	// Target file and owning entity.
	FileID     uuid.UUID  `json:"file_id"`
	FileName   string     `json:"file_name"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	// Transfer details.
	SizeBytes  int64   `json:"size_bytes"`
	DurationMs int64   `json:"duration_ms,omitempty"`
	Outcome    Outcome `json:"outcome"`

	// Request context.
	OriginPage string `json:"origin_page,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
