// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/airlog/internal/models"
)

// InsertFileRecord stores a new file record. The caller is expected to have
// run the record through the classifier first; an entity type outside the
// closed set is rejected here as a last line of defense.
func (db *DB) InsertFileRecord(ctx context.Context, file *models.FileRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	if !models.IsValidEntityType(file.EntityType) {
		return fmt.Errorf("invalid entity type %q", file.EntityType)
	}

	query := `INSERT INTO files (
		id, stored_name, original_name, media_type, size_bytes,
		entity_type, entity_id, uploader_id, uploader_email,
		is_active, sort_position, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		file.ID.String(), file.StoredName, file.OriginalName, file.MediaType, file.SizeBytes,
		string(file.EntityType), file.EntityID, file.UploaderID, file.UploaderEmail,
		file.IsActive, file.SortPosition, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	return nil
}

// GetFileRecord fetches one file by id, active or not.
func (db *DB) GetFileRecord(ctx context.Context, id uuid.UUID) (*models.FileRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT
		id, stored_name, original_name, media_type, size_bytes,
		entity_type, entity_id, uploader_id, uploader_email,
		is_active, sort_position, created_at
	FROM files WHERE id = ?`

	row := db.conn.QueryRowContext(ctx, query, id.String())
	file, err := scanFileRecordRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ListActiveFiles returns the active files attached to one entity, ordered by
// the operator-controlled sort position, then by creation time for rows that
// share a position.
func (db *DB) ListActiveFiles(ctx context.Context, entityType models.EntityType, entityID string) ([]models.FileRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT
		id, stored_name, original_name, media_type, size_bytes,
		entity_type, entity_id, uploader_id, uploader_email,
		is_active, sort_position, created_at
	FROM files
	WHERE entity_type = ? AND entity_id = ? AND is_active
	ORDER BY sort_position ASC, created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer closeQuietly(rows)

	var files []models.FileRecord
	for rows.Next() {
		file, err := scanFileRecordRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("file row iteration failed: %w", err)
	}

	return files, nil
}

// ListActiveFilesByUploader returns all active files uploaded by one user,
// used for the upload-once quota check.
func (db *DB) ListActiveFilesByUploader(ctx context.Context, uploaderID, uploaderEmail string) ([]models.FileRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT
		id, stored_name, original_name, media_type, size_bytes,
		entity_type, entity_id, uploader_id, uploader_email,
		is_active, sort_position, created_at
	FROM files
	WHERE is_active AND (uploader_id = ? OR (uploader_email <> '' AND LOWER(uploader_email) = LOWER(?)))
	ORDER BY created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, uploaderID, uploaderEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploader files: %w", err)
	}
	defer closeQuietly(rows)

	var files []models.FileRecord
	for rows.Next() {
		file, err := scanFileRecordRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("file row iteration failed: %w", err)
	}

	return files, nil
}

// SetFileActive flips the soft-delete flag. Deactivated files drop out of
// listings, quotas, and aggregation but the row survives for history.
func (db *DB) SetFileActive(ctx context.Context, id uuid.UUID, active bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE files SET is_active = ? WHERE id = ?`, active, id.String())
	if err != nil {
		return fmt.Errorf("failed to update file active flag: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateFileSortOrder repositions one file within its entity's listing.
func (db *DB) UpdateFileSortOrder(ctx context.Context, id uuid.UUID, position int) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE files SET sort_position = ? WHERE id = ?`, position, id.String())
	if err != nil {
		return fmt.Errorf("failed to update file sort order: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFileRecordRow(row rowScanner) (*models.FileRecord, error) {
	var file models.FileRecord
	var id, entityType string
	var uploaderEmail sql.NullString

	err := row.Scan(
		&id, &file.StoredName, &file.OriginalName, &file.MediaType, &file.SizeBytes,
		&entityType, &file.EntityID, &file.UploaderID, &uploaderEmail,
		&file.IsActive, &file.SortPosition, &file.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan file record: %w", err)
	}

	file.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid file id %q: %w", id, err)
	}
	file.EntityType = models.EntityType(entityType)
	file.UploaderEmail = uploaderEmail.String

	return &file, nil
}
