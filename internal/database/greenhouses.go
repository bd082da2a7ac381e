// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/tomtom215/greenhouse/internal/models"
)

// ListGreenhouses returns the greenhouses visible in scope, ordered by id.
func (db *DB) ListGreenhouses(ctx context.Context, scope Scope) ([]models.Greenhouse, error) {
	greenhouses := []models.Greenhouse{}
	q := scope.owned(db.withContext(ctx).Model(&models.Greenhouse{}))
	if err := q.Order("id").Find(&greenhouses).Error; err != nil {
		return nil, translate("list greenhouses", err)
	}
	return greenhouses, nil
}

// GreenhouseByID returns a greenhouse if it exists and is visible in scope.
func (db *DB) GreenhouseByID(ctx context.Context, id uint, scope Scope) (*models.Greenhouse, error) {
	var g models.Greenhouse
	q := scope.owned(db.withContext(ctx).Model(&models.Greenhouse{}))
	if err := q.Where("greenhouses.id = ?", id).First(&g).Error; err != nil {
		return nil, translate("get greenhouse", err)
	}
	return &g, nil
}

// CreateGreenhouse inserts g.
func (db *DB) CreateGreenhouse(ctx context.Context, g *models.Greenhouse) error {
	return translate("create greenhouse", db.withContext(ctx).Omit(clause.Associations).Create(g).Error)
}

// UpdateGreenhouse writes every column of g.
func (db *DB) UpdateGreenhouse(ctx context.Context, g *models.Greenhouse) error {
	return db.updateAll(db.withContext(ctx), "update greenhouse", g)
}

// DeleteGreenhouse removes a greenhouse. Plants, sensors and control states cascade.
func (db *DB) DeleteGreenhouse(ctx context.Context, id uint) error {
	return db.deleteByID(db.withContext(ctx), "delete greenhouse", &models.Greenhouse{}, id)
}

// ApplyReading stores value in the greenhouse metric fed by sensorType.
// Unknown sensor types are ignored.
func (db *DB) ApplyReading(ctx context.Context, greenhouseID uint, sensorType string, value float64) error {
	column, ok := models.MetricColumn(sensorType)
	if !ok {
		return nil
	}
	err := db.withContext(ctx).
		Model(&models.Greenhouse{}).
		Where("id = ?", greenhouseID).
		Update(column, value).Error
	return translate(fmt.Sprintf("apply %s reading", sensorType), err)
}
