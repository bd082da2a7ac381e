// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tomtom215/greenhouse/internal/models"
)

// Scope limits queries to the rows a caller may see. Admins see everything;
// everyone else sees only greenhouses they own and the rows under them.
type Scope struct {
	UserID uint
	All    bool
}

// ScopeFor derives the visibility scope of u.
func ScopeFor(u *models.User) Scope {
	return Scope{UserID: u.ID, All: u.IsAdmin()}
}

// owned filters greenhouse rows.
func (s Scope) owned(q *gorm.DB) *gorm.DB {
	if s.All {
		return q
	}
	return q.Where("greenhouses.user_id = ?", s.UserID)
}

// underOwned filters rows that carry a greenhouse_id.
func (s Scope) underOwned(q *gorm.DB) *gorm.DB {
	if s.All {
		return q
	}
	owned := q.Session(&gorm.Session{NewDB: true}).
		Model(&models.Greenhouse{}).
		Select("id").
		Where("user_id = ?", s.UserID)
	return q.Where("greenhouse_id IN (?)", owned)
}

// updateAll writes every column of v except the primary key, creation time
// and associations. Bool and nil fields are written too.
func (db *DB) updateAll(q *gorm.DB, op string, v interface{}) error {
	res := q.Model(v).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(v)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteByID deletes one row of model by id.
func (db *DB) deleteByID(q *gorm.DB, op string, model interface{}, id uint) error {
	res := q.Delete(model, id)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
