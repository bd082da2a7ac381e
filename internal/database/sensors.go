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

// ListSensors returns the sensors visible in scope with their greenhouse.
func (db *DB) ListSensors(ctx context.Context, scope Scope) ([]models.Sensor, error) {
	sensors := []models.Sensor{}
	q := scope.underOwned(db.withContext(ctx).Model(&models.Sensor{}))
	if err := q.Preload("Greenhouse").Order("id").Find(&sensors).Error; err != nil {
		return nil, translate("list sensors", err)
	}
	return sensors, nil
}

// SensorByID returns a sensor with its greenhouse if visible in scope.
func (db *DB) SensorByID(ctx context.Context, id uint, scope Scope) (*models.Sensor, error) {
	var s models.Sensor
	q := scope.underOwned(db.withContext(ctx).Model(&models.Sensor{}))
	if err := q.Preload("Greenhouse").Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate("get sensor", err)
	}
	return &s, nil
}

// CreateSensor inserts s.
func (db *DB) CreateSensor(ctx context.Context, s *models.Sensor) error {
	return translate("create sensor", db.withContext(ctx).Omit(clause.Associations).Create(s).Error)
}

// UpdateSensor writes every column of s.
func (db *DB) UpdateSensor(ctx context.Context, s *models.Sensor) error {
	return db.updateAll(db.withContext(ctx), "update sensor", s)
}

// DeleteSensor removes a sensor.
func (db *DB) DeleteSensor(ctx context.Context, id uint) error {
	return db.deleteByID(db.withContext(ctx), "delete sensor", &models.Sensor{}, id)
}

// RecordReading stores a reading on the sensor and copies it to the matching
// greenhouse metric in one transaction. s is updated in place.
func (db *DB) RecordReading(ctx context.Context, s *models.Sensor, value float64, at time.Time) error {
	return db.withContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sensor{}).
			Where("id = ?", s.ID).
			Updates(map[string]interface{}{
				"last_reading":    value,
				"last_reading_at": at,
			})
		if res.Error != nil {
			return translate("record reading", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if column, ok := models.MetricColumn(s.Type); ok {
			err := tx.Model(&models.Greenhouse{}).
				Where("id = ?", s.GreenhouseID).
				Update(column, value).Error
			if err != nil {
				return translate("update greenhouse metric", err)
			}
		}

		s.LastReading = &value
		s.LastReadingAt = &at
		return nil
	})
}
