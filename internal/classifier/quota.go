// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package classifier

import (
	"fmt"
	"strings"

	"github.com/tomtom215/airlog/internal/models"
)

// Actor identifies the caller of a quota or permission check. Email is the
// fallback identity when the uploader id was not recorded.
type Actor struct {
	ID    string
	Email string
	Role  models.Role
}

// Decision is the result of an authorization check. Reason is a
// human-readable explanation, set only when the check fails, and
// distinguishes the quota rule from the role restriction.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// allow is the zero-reason positive decision.
var allow = Decision{Allowed: true}

// CheckUploadAllowed enforces the upload-once rule.
//
// Roles with the UnlimitedUploads capability pass immediately. Restricted
// roles are rejected when any active file for the target entity was uploaded
// by the same actor, matched by id or, when the stored record has no
// uploader id, by email (case-insensitive). Inactive files never count
// against the quota.
func CheckUploadAllowed(actor Actor, existing []models.FileRecord) Decision {
	if models.CapabilitiesFor(actor.Role).UnlimitedUploads {
		return allow
	}

	for _, f := range existing {
		if !f.IsActive {
			continue
		}
		if sameUploader(actor, f) {
			return Decision{
				Allowed: false,
				Reason: fmt.Sprintf("upload quota exceeded: role %q may upload only one file per %s and %q is already uploaded",
					actor.Role, f.EntityType, f.OriginalName),
			}
		}
	}

	return allow
}

// CheckEditDeleteAllowed gates file mutation. Restricted roles may never edit
// or delete an uploaded file once stored.
func CheckEditDeleteAllowed(role models.Role) Decision {
	if models.CapabilitiesFor(role).ManageFiles {
		return allow
	}
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("role %q is not permitted to edit or delete uploaded files", role),
	}
}

// sameUploader matches a file to an actor by uploader id, falling back to a
// case-insensitive email comparison when the record carries no id.
func sameUploader(actor Actor, f models.FileRecord) bool {
	if f.UploaderID != "" && actor.ID != "" {
		return f.UploaderID == actor.ID
	}
	if f.UploaderEmail != "" && actor.Email != "" {
		return strings.EqualFold(f.UploaderEmail, actor.Email)
	}
	return false
}
