// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package models

// Role is a closed enumeration of user roles. Authorization decisions are
// driven by the capability table below, so adding a role is a data change,
// not new branching logic.
type Role string

// Role constants define the standard roles in the system.
const (
	// RoleAdmin has full access including user management and receives
	// live notifications.
	RoleAdmin Role = "admin"

	// RoleOrganizer manages projects and hackathon containers.
	RoleOrganizer Role = "organizer"

	// RoleEditor can write/modify content across entities.
	RoleEditor Role = "editor"

	// RoleAnalyzer has read access to all analytics dashboards.
	RoleAnalyzer Role = "analyzer"

	// RoleParticipant is a restricted contributor role subject to the
	// upload-once quota.
	RoleParticipant Role = "participant"

	// RoleMember is a restricted general-membership role subject to the
	// upload-once quota.
	RoleMember Role = "member"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []Role{
	RoleAdmin, RoleOrganizer, RoleEditor, RoleAnalyzer, RoleParticipant, RoleMember,
}

// IsValidRole checks if a role name is valid.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Capabilities describes what a role may do. All authorization checks read
// this table rather than comparing role names inline.
type Capabilities struct {
	// UnlimitedUploads exempts the role from the upload-once quota.
	UnlimitedUploads bool

	// ManageFiles allows editing and deleting stored files.
	ManageFiles bool

	// ReceiveNotifications marks the role as a live-notification recipient
	// and allows it to authenticate on the push channel.
	ReceiveNotifications bool
}

// roleCapabilities is the single source of truth for role permissions.
var roleCapabilities = map[Role]Capabilities{
	RoleAdmin:       {UnlimitedUploads: true, ManageFiles: true, ReceiveNotifications: true},
	RoleOrganizer:   {UnlimitedUploads: true, ManageFiles: true},
	RoleEditor:      {UnlimitedUploads: true, ManageFiles: true},
	RoleAnalyzer:    {UnlimitedUploads: true, ManageFiles: true},
	RoleParticipant: {},
	RoleMember:      {},
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// the zero capability set, which denies everything.
func CapabilitiesFor(role Role) Capabilities {
	return roleCapabilities[role]
}

// User is a row from the user/role directory. The directory is owned by the
// surrounding content-management application; Airlog only reads it to verify
// push-channel identities and to enumerate notification recipients.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}
