// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/models"
)

// newTestDB opens an in-memory DuckDB database with the schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{Path: ""})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func mkEvent(actorID, actorName string, fileID uuid.UUID, fileName string, entityType models.EntityType, size int64, at time.Time) *models.ActivityEvent {
	return &models.ActivityEvent{
		Kind:       models.EventDownload,
		ActorID:    actorID,
		ActorName:  actorName,
		ActorEmail: actorID + "@example.org",
		ActorRole:  models.RoleMember,
		FileID:     fileID,
		FileName:   fileName,
		EntityType: entityType,
		EntityID:   "entity-1",
		SizeBytes:  size,
		Outcome:    models.OutcomeCompleted,
		CreatedAt:  at,
	}
}

func TestInsertActivityEventAssignsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	event := mkEvent("u1", "Alice", uuid.New(), "ep1.mp3", models.EntityEpisode, 100, time.Time{})
	if err := db.InsertActivityEvent(ctx, event); err != nil {
		t.Fatalf("InsertActivityEvent failed: %v", err)
	}
	if event.ID == uuid.Nil {
		t.Error("expected event id to be assigned")
	}
	if event.CreatedAt.IsZero() {
		t.Error("expected created_at to be assigned")
	}
}

func TestInsertActivityEventRejectsInvalidEnums(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	bad := mkEvent("u1", "Alice", uuid.New(), "f", models.EntityType("bogus"), 1, time.Now())
	if err := db.InsertActivityEvent(ctx, bad); err == nil {
		t.Error("expected error for invalid entity type")
	}

	bad = mkEvent("u1", "Alice", uuid.New(), "f", models.EntityEpisode, 1, time.Now())
	bad.Outcome = models.Outcome("exploded")
	if err := db.InsertActivityEvent(ctx, bad); err == nil {
		t.Error("expected error for invalid outcome")
	}
}

func TestGetEventLogPaginationAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		e := mkEvent("u1", "Alice", uuid.New(), "f", models.EntityEpisode, 10, base.Add(time.Duration(i)*time.Minute))
		if err := db.InsertActivityEvent(ctx, e); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	events, total, err := db.GetEventLog(ctx, EventFilter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("GetEventLog failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(events) != 2 {
		t.Fatalf("page size = %d, want 2", len(events))
	}
	// Newest first.
	if !events[0].CreatedAt.After(events[1].CreatedAt) {
		t.Errorf("expected descending order, got %v then %v", events[0].CreatedAt, events[1].CreatedAt)
	}

	events, _, err = db.GetEventLog(ctx, EventFilter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("GetEventLog offset page failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("last page size = %d, want 1", len(events))
	}
}

func TestGetEventLogFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	episode := mkEvent("u1", "Alice", uuid.New(), "a", models.EntityEpisode, 10, now)
	team := mkEvent("u2", "Bob", uuid.New(), "b", models.EntityTeam, 20, now)
	failed := mkEvent("u3", "Carol", uuid.New(), "c", models.EntityEpisode, 30, now)
	failed.Outcome = models.OutcomeFailed

	for _, e := range []*models.ActivityEvent{episode, team, failed} {
		if err := db.InsertActivityEvent(ctx, e); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	events, total, err := db.GetEventLog(ctx, EventFilter{
		EntityTypes: []models.EntityType{models.EntityEpisode},
	})
	if err != nil {
		t.Fatalf("filter by entity type failed: %v", err)
	}
	if total != 2 || len(events) != 2 {
		t.Errorf("entity filter: total=%d len=%d, want 2/2", total, len(events))
	}

	_, total, err = db.GetEventLog(ctx, EventFilter{
		Outcomes: []models.Outcome{models.OutcomeFailed},
	})
	if err != nil {
		t.Fatalf("filter by outcome failed: %v", err)
	}
	if total != 1 {
		t.Errorf("outcome filter: total=%d, want 1", total)
	}

	_, total, err = db.GetEventLog(ctx, EventFilter{ActorSearch: "caro"})
	if err != nil {
		t.Fatalf("actor search failed: %v", err)
	}
	if total != 1 {
		t.Errorf("actor search: total=%d, want 1", total)
	}
}

func TestFileRecordLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	file := &models.FileRecord{
		StoredName:   "abc123.mp3",
		OriginalName: "эфир.mp3",
		MediaType:    "audio/mpeg",
		SizeBytes:    2048,
		EntityType:   models.EntityEpisode,
		EntityID:     "ep-1",
		UploaderID:   "u1",
		IsActive:     true,
	}
	if err := db.InsertFileRecord(ctx, file); err != nil {
		t.Fatalf("InsertFileRecord failed: %v", err)
	}

	got, err := db.GetFileRecord(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetFileRecord failed: %v", err)
	}
	if got.OriginalName != "эфир.mp3" {
		t.Errorf("original name round-trip: got %q", got.OriginalName)
	}

	if err := db.SetFileActive(ctx, file.ID, false); err != nil {
		t.Fatalf("SetFileActive failed: %v", err)
	}
	files, err := db.ListActiveFiles(ctx, models.EntityEpisode, "ep-1")
	if err != nil {
		t.Fatalf("ListActiveFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("soft-deleted file still listed: %d rows", len(files))
	}
}

func TestFileOperationsOnMissingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetFileRecord(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFileRecord error = %v, want ErrNotFound", err)
	}
	if err := db.SetFileActive(ctx, uuid.New(), false); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetFileActive error = %v, want ErrNotFound", err)
	}
	if err := db.UpdateFileSortOrder(ctx, uuid.New(), 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateFileSortOrder error = %v, want ErrNotFound", err)
	}
}

func TestListActiveFilesSortOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i, name := range []string{"first", "second", "third"} {
		f := &models.FileRecord{
			StoredName:   name,
			OriginalName: name,
			MediaType:    "audio/mpeg",
			EntityType:   models.EntityScript,
			EntityID:     "s-1",
			UploaderID:   "u1",
			IsActive:     true,
			SortPosition: i,
		}
		if err := db.InsertFileRecord(ctx, f); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		ids = append(ids, f.ID)
	}

	// Move the last file to the front.
	if err := db.UpdateFileSortOrder(ctx, ids[2], -1); err != nil {
		t.Fatalf("UpdateFileSortOrder failed: %v", err)
	}

	files, err := db.ListActiveFiles(ctx, models.EntityScript, "s-1")
	if err != nil {
		t.Fatalf("ListActiveFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len = %d, want 3", len(files))
	}
	if files[0].OriginalName != "third" {
		t.Errorf("first listed = %q, want %q", files[0].OriginalName, "third")
	}
}

func TestListActiveFilesByUploaderEmailFallback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f := &models.FileRecord{
		StoredName:    "x",
		OriginalName:  "x",
		MediaType:     "audio/mpeg",
		EntityType:    models.EntitySubmission,
		EntityID:      "sub-1",
		UploaderID:    "legacy-id",
		UploaderEmail: "P@Example.org",
		IsActive:      true,
	}
	if err := db.InsertFileRecord(ctx, f); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	files, err := db.ListActiveFilesByUploader(ctx, "different-id", "p@example.org")
	if err != nil {
		t.Fatalf("ListActiveFilesByUploader failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("email match returned %d rows, want 1", len(files))
	}
}

func TestNotificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		n := &models.Notification{
			RecipientID: "admin-1",
			Type:        models.NotificationNewRegistration,
			Title:       "New registration",
			Message:     "Someone registered",
		}
		if err := db.InsertNotification(ctx, n); err != nil {
			t.Fatalf("InsertNotification failed: %v", err)
		}
	}
	other := &models.Notification{
		RecipientID: "admin-2",
		Type:        models.NotificationSystemAlert,
		Title:       "Alert",
		Message:     "msg",
	}
	if err := db.InsertNotification(ctx, other); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}

	list, total, err := db.ListNotifications(ctx, "admin-1", false, 10, 0)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Errorf("admin-1 list: total=%d len=%d, want 3/3", total, len(list))
	}

	count, err := db.CountUnread(ctx, "admin-1")
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 3 {
		t.Errorf("unread = %d, want 3", count)
	}

	if err := db.MarkRead(ctx, list[0].ID, "admin-1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	count, _ = db.CountUnread(ctx, "admin-1")
	if count != 2 {
		t.Errorf("unread after MarkRead = %d, want 2", count)
	}

	changed, err := db.MarkAllRead(ctx, "admin-1")
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("MarkAllRead changed %d rows, want 2", changed)
	}

	// Cross-recipient operations must not leak.
	if err := db.MarkRead(ctx, other.ID, "admin-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-recipient MarkRead error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteNotification(ctx, other.ID, "admin-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-recipient delete error = %v, want ErrNotFound", err)
	}

	if err := db.DeleteNotification(ctx, list[0].ID, "admin-1"); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}
	_, total, _ = db.ListNotifications(ctx, "admin-1", false, 10, 0)
	if total != 2 {
		t.Errorf("total after delete = %d, want 2", total)
	}
}

func TestDirectory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	users := []models.User{
		{ID: "a1", Name: "Admin One", Email: "a1@example.org", Role: models.RoleAdmin, IsActive: true},
		{ID: "a2", Name: "Admin Two", Email: "a2@example.org", Role: models.RoleAdmin, IsActive: true},
		{ID: "a3", Name: "Former Admin", Email: "a3@example.org", Role: models.RoleAdmin, IsActive: false},
		{ID: "m1", Name: "Member", Email: "m1@example.org", Role: models.RoleMember, IsActive: true},
	}
	for i := range users {
		if err := db.UpsertUser(ctx, &users[i]); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
	}

	admins, err := db.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins failed: %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("ListAdmins returned %d, want 2 (inactive excluded)", len(admins))
	}

	role, err := db.GetUserRole(ctx, "m1")
	if err != nil {
		t.Fatalf("GetUserRole failed: %v", err)
	}
	if role != models.RoleMember {
		t.Errorf("role = %q, want member", role)
	}

	if _, err := db.GetUserRole(ctx, "a3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive user role error = %v, want ErrNotFound", err)
	}

	// Re-upsert changes the role in place.
	users[3].Role = models.RoleAdmin
	if err := db.UpsertUser(ctx, &users[3]); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}
	role, _ = db.GetUserRole(ctx, "m1")
	if role != models.RoleAdmin {
		t.Errorf("role after promotion = %q, want admin", role)
	}
}
