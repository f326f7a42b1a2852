// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package classifier routes uploaded blobs to the correct logical entity
// bucket and enforces the per-actor upload quota.
//
// A single upload endpoint is shared by multiple logical containers, so the
// real classification signal is the payload's type, not the URL it was
// posted to. Classification is content-type first with a filename-extension
// fallback, and is a pure function of its inputs: identical inputs always
// produce the identical bucket decision.
package classifier

import (
	"path/filepath"
	"strings"

	"github.com/tomtom215/airlog/internal/models"
)

// TargetKind identifies the logical container an upload was posted against.
type TargetKind string

// Upload target kinds. Hackathon containers are project-backed but keep
// their own kind because both cross-routing rules apply to them.
const (
	TargetProject    TargetKind = "project"
	TargetHackathon  TargetKind = "hackathon"
	TargetEpisode    TargetKind = "episode"
	TargetScript     TargetKind = "script"
	TargetSubmission TargetKind = "submission"
	TargetTeam       TargetKind = "team"
)

// defaultBuckets maps each upload target to the bucket implied by its
// endpoint when no cross-routing rule fires.
var defaultBuckets = map[TargetKind]models.EntityType{
	TargetProject:    models.EntityProject,
	TargetHackathon:  models.EntityProject,
	TargetEpisode:    models.EntityEpisode,
	TargetScript:     models.EntityScript,
	TargetSubmission: models.EntitySubmission,
	TargetTeam:       models.EntityTeam,
}

// documentMediaTypes are word-processor formats, PDF, plain text, and rich
// text. Matched against the declared Content-Type with parameters stripped.
var documentMediaTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.oasis.opendocument.text":                                 true,
	"application/rtf":                                                         true,
	"text/rtf":                                                                true,
	"text/plain":                                                              true,
}

// documentExtensions is the filename fallback for documentMediaTypes.
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".odt": true, ".rtf": true, ".txt": true,
}

// mediaExtensions is the filename fallback for audio/video payloads.
var mediaExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true,
	".ogg": true, ".flac": true, ".mp4": true, ".mov": true,
	".avi": true, ".mkv": true, ".webm": true, ".wma": true,
}

// Classify decides the entity bucket for an uploaded blob.
//
// Routing rules, in order:
//   - a textual document uploaded against an episode or a hackathon/project
//     container routes to the script/document bucket;
//   - an audio/video payload uploaded against a script or a hackathon/project
//     container routes to the team/recording bucket;
//   - anything else lands in the target's default bucket.
func Classify(mediaType, filename string, target TargetKind) models.EntityType {
	fallback, ok := defaultBuckets[target]
	if !ok {
		fallback = models.EntityProject
	}

	if isDocument(mediaType, filename) {
		switch target {
		case TargetEpisode, TargetProject, TargetHackathon:
			return models.EntityScript
		}
	}

	if isAudioVideo(mediaType, filename) {
		switch target {
		case TargetScript, TargetProject, TargetHackathon:
			return models.EntityTeam
		}
	}

	return fallback
}

// isDocument reports whether the payload is a textual document, checking the
// declared media type first and falling back to the filename extension.
func isDocument(mediaType, filename string) bool {
	if documentMediaTypes[normalizeMediaType(mediaType)] {
		return true
	}
	return documentExtensions[extensionOf(filename)]
}

// isAudioVideo reports whether the payload is an audio or video recording.
func isAudioVideo(mediaType, filename string) bool {
	mt := normalizeMediaType(mediaType)
	if strings.HasPrefix(mt, "audio/") || strings.HasPrefix(mt, "video/") {
		return true
	}
	return mediaExtensions[extensionOf(filename)]
}

// normalizeMediaType strips parameters (e.g. "; charset=utf-8") and lowercases.
func normalizeMediaType(mediaType string) string {
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// extensionOf returns the lowercased filename extension including the dot.
func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
