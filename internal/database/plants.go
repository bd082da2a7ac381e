// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/tomtom215/greenhouse/internal/models"
)

// ListPlants returns the plants visible in scope with their greenhouse.
func (db *DB) ListPlants(ctx context.Context, scope Scope) ([]models.Plant, error) {
	plants := []models.Plant{}
	q := scope.underOwned(db.withContext(ctx).Model(&models.Plant{}))
	if err := q.Preload("Greenhouse").Order("id").Find(&plants).Error; err != nil {
		return nil, translate("list plants", err)
	}
	return plants, nil
}

// PlantByID returns a plant with its greenhouse if visible in scope.
func (db *DB) PlantByID(ctx context.Context, id uint, scope Scope) (*models.Plant, error) {
	var p models.Plant
	q := scope.underOwned(db.withContext(ctx).Model(&models.Plant{}))
	if err := q.Preload("Greenhouse").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate("get plant", err)
	}
	return &p, nil
}

// CreatePlant inserts p.
func (db *DB) CreatePlant(ctx context.Context, p *models.Plant) error {
	return translate("create plant", db.withContext(ctx).Omit(clause.Associations).Create(p).Error)
}

// UpdatePlant writes every column of p.
func (db *DB) UpdatePlant(ctx context.Context, p *models.Plant) error {
	return db.updateAll(db.withContext(ctx), "update plant", p)
}

// DeletePlant removes a plant.
func (db *DB) DeletePlant(ctx context.Context, id uint) error {
	return db.deleteByID(db.withContext(ctx), "delete plant", &models.Plant{}, id)
}
