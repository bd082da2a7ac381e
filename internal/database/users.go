// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"time"

	"github.com/tomtom215/greenhouse/internal/models"
)

// CreateUser inserts u and fills in its id and timestamps.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	return translate("create user", db.withContext(ctx).Create(u).Error)
}

// UserByID returns the user with the given id.
func (db *DB) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := db.withContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

// UserByEmail returns the user registered with email, ignoring case.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := db.withContext(ctx).Where("LOWER(email) = ?", models.NormalizeEmail(email))
	if err := q.First(&u).Error; err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

// ListUsers returns every user ordered by id.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := db.withContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

// UpdateUser writes every column of u.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	return db.updateAll(db.withContext(ctx), "update user", u)
}

// DeleteUser removes a user. Greenhouses, OTPs and tokens cascade.
func (db *DB) DeleteUser(ctx context.Context, id uint) error {
	return db.deleteByID(db.withContext(ctx), "delete user", &models.User{}, id)
}

// EmailExists reports whether email, ignoring case, is taken by a user other
// than excludeID.
func (db *DB) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	return db.userFieldExists(ctx, "email", "LOWER(email) = ?", models.NormalizeEmail(email), excludeID)
}

// UsernameExists reports whether username is taken by a user other than excludeID.
func (db *DB) UsernameExists(ctx context.Context, username string, excludeID uint) (bool, error) {
	return db.userFieldExists(ctx, "username", "username = ?", username, excludeID)
}

func (db *DB) userFieldExists(ctx context.Context, column, cond, value string, excludeID uint) (bool, error) {
	var count int64
	q := db.withContext(ctx).Model(&models.User{}).Where(cond, value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate("check "+column, err)
	}
	return count > 0, nil
}

// MarkEmailVerified stamps email_verified_at unless it is already set.
func (db *DB) MarkEmailVerified(ctx context.Context, userID uint, at time.Time) error {
	err := db.withContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND email_verified_at IS NULL", userID).
		Update("email_verified_at", at).Error
	return translate("mark email verified", err)
}

// SetLoggedIn records whether the user currently holds a session.
func (db *DB) SetLoggedIn(ctx context.Context, userID uint, loggedIn bool) error {
	return db.setUserColumn(ctx, "set logged in", userID, "is_logged_in", loggedIn)
}

// SetActive enables or disables an account.
func (db *DB) SetActive(ctx context.Context, userID uint, active bool) error {
	return db.setUserColumn(ctx, "set active", userID, "is_active", active)
}

// SetRole changes a user's role.
func (db *DB) SetRole(ctx context.Context, userID uint, role string) error {
	return db.setUserColumn(ctx, "set role", userID, "role", role)
}

func (db *DB) setUserColumn(ctx context.Context, op string, userID uint, column string, value interface{}) error {
	res := db.withContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
