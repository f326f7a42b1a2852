// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/classifier"
	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/metrics"
	"github.com/tomtom215/airlog/internal/models"
	"github.com/tomtom215/airlog/internal/validation"
)

// UploadFile serves POST /api/v1/files: the intake path. The original
// filename is repaired once here, the classifier assigns the bucket, the
// upload-once quota is enforced for restricted roles, and both the file
// record and the upload event are written. Any write failure rejects the
// whole operation.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UploadFileRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Errors())
		return
	}

	identity := identityFrom(r)
	actor := h.resolveActor(r, identity.UserID, identity.Username, identity.Role)

	// Filename repair happens exactly once, at intake.
	originalName := classifier.DecodeFilename(req.OriginalName)

	entityType := classifier.Classify(req.MediaType, originalName, classifier.TargetKind(req.TargetKind))

	if !models.CapabilitiesFor(actor.Role).UnlimitedUploads {
		uploaded, err := h.db.ListActiveFilesByUploader(r.Context(), actor.ID, actor.Email)
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		// The upload-once rule is per target entity; uploads elsewhere do
		// not consume this slot.
		existing := uploaded[:0:0]
		for _, f := range uploaded {
			if f.EntityType == entityType && f.EntityID == req.TargetID {
				existing = append(existing, f)
			}
		}
		decision := classifier.CheckUploadAllowed(classifier.Actor{
			ID:    actor.ID,
			Email: actor.Email,
			Role:  actor.Role,
		}, existing)
		if !decision.Allowed {
			rw.QuotaExceeded(decision.Reason)
			return
		}
	}

	file := &models.FileRecord{
		StoredName:    req.StoredName,
		OriginalName:  originalName,
		MediaType:     req.MediaType,
		SizeBytes:     req.SizeBytes,
		EntityType:    entityType,
		EntityID:      req.TargetID,
		UploaderID:    actor.ID,
		UploaderEmail: actor.Email,
		IsActive:      true,
	}
	if err := h.db.InsertFileRecord(r.Context(), file); err != nil {
		rw.DatabaseError(err)
		return
	}

	outcome := models.Outcome(req.Outcome)
	if outcome == "" {
		outcome = models.OutcomeCompleted
	}

	event := &models.ActivityEvent{
		Kind:       models.EventUpload,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		FileID:     file.ID,
		FileName:   file.OriginalName,
		EntityType: entityType,
		EntityID:   req.TargetID,
		SizeBytes:  req.SizeBytes,
		DurationMs: req.DurationMs,
		Outcome:    outcome,
		OriginPage: req.OriginPage,
		IPAddress:  r.RemoteAddr,
	}
	if err := h.db.InsertActivityEvent(r.Context(), event); err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.RecordActivityEvent(string(event.Kind), string(event.Outcome), event.SizeBytes)
	h.analytics.InvalidateCache()

	// Contest submissions alert the admins. The upload itself already
	// succeeded, so a notification failure is logged, not returned.
	if entityType == models.EntitySubmission && h.notifier != nil {
		if _, err := h.notifier.SubmissionUploaded(r.Context(), actor.ID, actor.Name, file.OriginalName); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).
				Str("file_id", file.ID.String()).
				Msg("submission notification failed")
		}
	}

	rw.Created(file)
}

// RecordDownload serves POST /api/v1/files/{id}/downloads. The event write
// is the point of the operation; if it fails, the client gets an error so
// the interaction is not silently unrecorded.
func (h *Handler) RecordDownload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("invalid file id")
		return
	}

	var req RecordDownloadRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Errors())
		return
	}

	file, err := h.db.GetFileRecord(r.Context(), fileID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("file not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if !file.IsActive {
		rw.NotFound("file not found")
		return
	}

	identity := identityFrom(r)
	actor := h.resolveActor(r, identity.UserID, identity.Username, identity.Role)

	outcome := models.Outcome(req.Outcome)
	if outcome == "" {
		outcome = models.OutcomeCompleted
	}

	event := &models.ActivityEvent{
		Kind:       models.EventDownload,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		FileID:     file.ID,
		FileName:   file.OriginalName,
		EntityType: file.EntityType,
		EntityID:   file.EntityID,
		SizeBytes:  file.SizeBytes,
		DurationMs: req.DurationMs,
		Outcome:    outcome,
		OriginPage: req.OriginPage,
		IPAddress:  r.RemoteAddr,
	}
	if err := h.db.InsertActivityEvent(r.Context(), event); err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.RecordActivityEvent(string(event.Kind), string(event.Outcome), event.SizeBytes)
	h.analytics.InvalidateCache()

	rw.Created(event)
}

// UpdateFile serves PATCH /api/v1/files/{id}: soft delete/restore and
// reorder, restricted to privileged roles.
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity := identityFrom(r)
	if decision := classifier.CheckEditDeleteAllowed(identity.Role); !decision.Allowed {
		rw.Forbidden(decision.Reason)
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("invalid file id")
		return
	}

	var req UpdateFileRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if req.IsActive == nil && req.SortPosition == nil {
		rw.BadRequest("nothing to update")
		return
	}

	if req.IsActive != nil {
		if err := h.db.SetFileActive(r.Context(), fileID, *req.IsActive); err != nil {
			h.writeFileUpdateError(rw, err)
			return
		}
	}
	if req.SortPosition != nil {
		if err := h.db.UpdateFileSortOrder(r.Context(), fileID, *req.SortPosition); err != nil {
			h.writeFileUpdateError(rw, err)
			return
		}
	}

	h.analytics.InvalidateCache()

	file, err := h.db.GetFileRecord(r.Context(), fileID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(file)
}

// ListFiles serves GET /api/v1/files?entity_type=&entity_id=: the active
// files attached to one entity in display order.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	entityType := models.EntityType(r.URL.Query().Get("entity_type"))
	entityID := r.URL.Query().Get("entity_id")
	if !models.IsValidEntityType(entityType) || entityID == "" {
		rw.BadRequest("entity_type and entity_id are required")
		return
	}

	files, err := h.db.ListActiveFiles(r.Context(), entityType, entityID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if files == nil {
		files = []models.FileRecord{}
	}
	rw.Success(files)
}

func (h *Handler) writeFileUpdateError(rw *ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("file not found")
		return
	}
	rw.DatabaseError(err)
}

// resolvedActor is the denormalized actor identity written into events.
type resolvedActor struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// resolveActor enriches the token identity with the directory row when one
// exists; events denormalize these fields at write time.
func (h *Handler) resolveActor(r *http.Request, userID, username string, role models.Role) resolvedActor {
	actor := resolvedActor{
		ID:   userID,
		Name: username,
		Role: role,
	}

	if user, err := h.db.GetUser(r.Context(), userID); err == nil {
		actor.Name = user.Name
		actor.Email = user.Email
		actor.Role = user.Role
	}

	return actor
}
