// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/airlog/internal/models"
)

// The users table is a replica of the platform's directory. UpsertUser is the
// replication entry point; everything else in this service only reads it for
// role checks and admin fan-out.

// UpsertUser inserts or replaces one directory row.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `INSERT OR REPLACE INTO users (id, name, email, role, is_active)
		VALUES (?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), user.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUserRole returns the current directory role for one user.
// Role checks happen at delivery time, not at connect time, so a demoted
// admin stops receiving notifications immediately.
func (db *DB) GetUserRole(ctx context.Context, userID string) (models.Role, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var role string
	err := db.conn.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id = ? AND is_active`, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query user role: %w", err)
	}
	return models.Role(role), nil
}

// GetUser returns one active directory row.
func (db *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var u models.User
	var role string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, role, is_active FROM users WHERE id = ? AND is_active`,
		userID).Scan(&u.ID, &u.Name, &u.Email, &role, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

// ListAdmins returns every active admin user; notification fan-out creates
// one durable row per returned user.
func (db *DB) ListAdmins(ctx context.Context) ([]models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, email, role, is_active FROM users
		WHERE role = ? AND is_active ORDER BY id ASC`, string(models.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer closeQuietly(rows)

	var admins []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &u.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = models.Role(role)
		admins = append(admins, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user row iteration failed: %w", err)
	}

	return admins, nil
}
