// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tomtom215/greenhouse/internal/models"
)

// ReplaceOTP deletes the user's unused codes and stores otp, so at most one
// unused code exists per user.
func (db *DB) ReplaceOTP(ctx context.Context, otp *models.OTP) error {
	return db.withContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND is_used = ?", otp.UserID, false).
			Delete(&models.OTP{}).Error
		if err != nil {
			return translate("delete unused otps", err)
		}
		return translate("create otp", tx.Omit(clause.Associations).Create(otp).Error)
	})
}

// LatestValidOTP returns the newest unused code that has not expired at now.
func (db *DB) LatestValidOTP(ctx context.Context, userID uint, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := db.withContext(ctx).
		Where("user_id = ? AND is_used = ? AND expires_at > ?", userID, false, now).
		Order("created_at desc").
		Order("id desc").
		First(&otp).Error
	if err != nil {
		return nil, translate("get latest otp", err)
	}
	return &otp, nil
}

// MarkOTPUsed consumes a code. It returns ErrNotFound when the code was
// already used, so two concurrent verifications cannot both succeed.
func (db *DB) MarkOTPUsed(ctx context.Context, id uint) error {
	res := db.withContext(ctx).
		Model(&models.OTP{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return translate("mark otp used", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredOTPs removes used codes and codes expired at now.
func (db *DB) DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res := db.withContext(ctx).
		Where("expires_at <= ? OR is_used = ?", now, true).
		Delete(&models.OTP{})
	if res.Error != nil {
		return 0, translate("delete expired otps", res.Error)
	}
	return res.RowsAffected, nil
}
