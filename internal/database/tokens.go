// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/tomtom215/greenhouse/internal/models"
)

// CreateToken stores a newly issued access token.
func (db *DB) CreateToken(ctx context.Context, t *models.AccessToken) error {
	return translate("create token", db.withContext(ctx).Omit(clause.Associations).Create(t).Error)
}

// TokenByID returns the token row for a jti.
func (db *DB) TokenByID(ctx context.Context, id string) (*models.AccessToken, error) {
	var t models.AccessToken
	if err := db.withContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate("get token", err)
	}
	return &t, nil
}

// TouchToken records the last time a token authenticated a request.
func (db *DB) TouchToken(ctx context.Context, id string, at time.Time) error {
	err := db.withContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
	return translate("touch token", err)
}

// DeleteToken revokes a single token.
func (db *DB) DeleteToken(ctx context.Context, id string) error {
	err := db.withContext(ctx).Where("id = ?", id).Delete(&models.AccessToken{}).Error
	return translate("delete token", err)
}

// DeleteUserTokens revokes every token of a user.
func (db *DB) DeleteUserTokens(ctx context.Context, userID uint) (int64, error) {
	res := db.withContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	if res.Error != nil {
		return 0, translate("delete user tokens", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteExpiredTokens removes tokens that expired at now.
func (db *DB) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := db.withContext(ctx).Where("expires_at <= ?", now).Delete(&models.AccessToken{})
	if res.Error != nil {
		return 0, translate("delete expired tokens", res.Error)
	}
	return res.RowsAffected, nil
}
