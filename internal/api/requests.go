// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

// LoginRequest is the credentials payload for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UploadFileRequest registers a completed upload. The transfer itself happens
// out of band; this endpoint records the file, classifies it, enforces the
// quota, and appends the upload event.
type UploadFileRequest struct {
	StoredName   string `json:"stored_name" validate:"required"`
	OriginalName string `json:"original_name" validate:"required"`
	MediaType    string `json:"media_type" validate:"required"`
	SizeBytes    int64  `json:"size_bytes" validate:"gte=0"`

	// TargetKind/TargetID name the page the upload was made against; the
	// classifier may route the file into a different bucket.
	TargetKind string `json:"target_kind" validate:"required,oneof=project hackathon episode script submission team"`
	TargetID   string `json:"target_id" validate:"required"`

	DurationMs int64  `json:"duration_ms" validate:"gte=0"`
	Outcome    string `json:"outcome" validate:"omitempty,outcome"`
	OriginPage string `json:"origin_page"`
}

// RecordDownloadRequest appends a download event for an existing file.
type RecordDownloadRequest struct {
	DurationMs int64  `json:"duration_ms" validate:"gte=0"`
	Outcome    string `json:"outcome" validate:"omitempty,outcome"`
	OriginPage string `json:"origin_page"`
}

// UpdateFileRequest edits a file record: soft delete/restore via IsActive,
// listing reorder via SortPosition. Both fields are optional; omitted fields
// are untouched.
type UpdateFileRequest struct {
	IsActive     *bool `json:"is_active"`
	SortPosition *int  `json:"sort_position" validate:"omitempty,gte=-1000000,lte=1000000"`
}
