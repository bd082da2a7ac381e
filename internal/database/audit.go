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

// MaxAuditLimit caps a single audit listing.
const MaxAuditLimit = 500

// AuditFilter narrows ListAuditEvents. Zero fields match everything.
type AuditFilter struct {
	Type    string
	ActorID *uint
	Since   time.Time
	Limit   int
}

// CreateAuditEvent stores an audit entry.
func (db *DB) CreateAuditEvent(ctx context.Context, ev *models.AuditEvent) error {
	return translate("create audit event", db.withContext(ctx).Create(ev).Error)
}

// ListAuditEvents returns matching entries, newest first.
func (db *DB) ListAuditEvents(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error) {
	limit := f.Limit
	if limit <= 0 || limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	q := db.withContext(ctx).Model(&models.AuditEvent{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if !f.Since.IsZero() {
		q = q.Where("occurred_at >= ?", f.Since)
	}

	events := []models.AuditEvent{}
	if err := q.Order("occurred_at desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, translate("list audit events", err)
	}
	return events, nil
}

// DeleteAuditEventsBefore removes entries older than cutoff.
func (db *DB) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := db.withContext(ctx).Where("occurred_at < ?", cutoff).Delete(&models.AuditEvent{})
	if res.Error != nil {
		return 0, translate("delete audit events", res.Error)
	}
	return res.RowsAffected, nil
}
