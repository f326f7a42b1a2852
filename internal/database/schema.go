// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import "fmt"

// createTables initializes the database schema. All statements are idempotent
// so startup is safe against an existing database file.
func (db *DB) createTables() error {
	statements := []string{
		// Append-only activity log. Actor fields are denormalized at write
		// time so history survives later renames in the directory.
		`CREATE TABLE IF NOT EXISTS activity_events (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			actor_name TEXT NOT NULL,
			actor_email TEXT,
			actor_role TEXT NOT NULL,
			file_id UUID NOT NULL,
			file_name TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			origin_page TEXT,
			ip_address TEXT,
			created_at TIMESTAMP NOT NULL
		)`,

		// File records. is_active=false is a soft delete: the row stays for
		// history but drops out of listings, quotas, and aggregation.
		`CREATE TABLE IF NOT EXISTS files (
			id UUID PRIMARY KEY,
			stored_name TEXT NOT NULL,
			original_name TEXT NOT NULL,
			media_type TEXT NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			uploader_id TEXT NOT NULL,
			uploader_email TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			sort_position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		// Durable per-recipient notification rows. One domain occurrence
		// produces one row per admin recipient.
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			actor_id TEXT,
			actor_name TEXT,
			priority TEXT NOT NULL DEFAULT 'normal',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMP,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			action_url TEXT,
			metadata TEXT,
			created_at TIMESTAMP NOT NULL
		)`,

		// Replicated user directory. The platform of record pushes rows in;
		// this service only reads them for role checks and admin fan-out.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON activity_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor ON activity_events(actor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_file ON activity_events(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity_type ON activity_events(entity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_files_entity ON files(entity_type, entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_uploader ON files(uploader_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}
